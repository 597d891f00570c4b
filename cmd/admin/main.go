package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ariefcatur/resto-pos/internal/config"
	"github.com/ariefcatur/resto-pos/internal/logging"
	"github.com/ariefcatur/resto-pos/internal/posapi"
	"github.com/ariefcatur/resto-pos/internal/realtime"
	"github.com/ariefcatur/resto-pos/internal/station"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New("admin", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	api, err := posapi.New(cfg.POSBaseURL, posapi.WithLogger(log))
	if err != nil {
		log.Error("pos client", "err", err)
		os.Exit(1)
	}
	if cfg.POSUsername != "" {
		if err := api.Login(ctx, cfg.POSUsername, cfg.POSPassword); err != nil {
			log.Error("login", "user", cfg.POSUsername, "err", err)
			os.Exit(1)
		}
	}

	alert := station.AlertFunc(func(msg string) { fmt.Println("!!", msg) })
	admin := station.NewAdmin(api, alert, log,
		station.WithDebounce(cfg.AdminDebounce),
		station.OnRefresh(func(s station.AdminSnapshot) {
			t := s.Stats.Totali
			log.Info("statistiche",
				"ordini_totali", t.OrdiniTotali,
				"ordini_completati", t.OrdiniCompletati,
				"non_completati", s.Stats.NonCompletati(),
				"totale_incasso", t.TotaleIncasso,
				"totale_contanti", t.TotaleContanti,
				"totale_carta", t.TotaleCarta,
				"categorie", len(s.Stats.Categorie),
				"top10", len(s.Stats.Top10),
			)
		}),
	)
	_ = admin.Refresh(ctx)

	rc, err := realtime.Dial(ctx, cfg.RelayURL, nil, log)
	if err != nil {
		log.Error("relay", "err", err)
		os.Exit(1)
	}
	defer rc.Close()

	go func() {
		if err := admin.Run(ctx, rc); err != nil {
			log.Error("realtime stopped", "err", err)
			cancel()
		}
	}()

	go readCommands(ctx, admin)

	<-ctx.Done()
	log.Info("shutting down admin...")
}

const usage = `comandi:
  aggiorna
  dettagli <id_ordine>
  rifornisci <id_prodotto> <quantita>
  aggiungi_prodotto <nome> <categoria_dashboard> <categoria_menu> <prezzo> <quantita>
  modifica_prodotto <id> <nome> <categoria_dashboard> <quantita> <si|no>
  elimina_prodotto <id>
  modifica_ordine <id> <nome_cliente> <tavolo> <persone> <pagamento>
  elimina_ordine <id>
  aggiungi_utente <username> <password> <si|no admin> <permessi,...>
  modifica_utente <id> <username> <si|no admin> <si|no attivo> <permessi,...> [password]
  elimina_utente <id>
(usa _ al posto degli spazi nei nomi)`

// readCommands drives the back-office from stdin, one command per line.
func readCommands(ctx context.Context, a *station.Admin) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := runCommand(ctx, a, fields[0], fields[1:]); errors.Is(err, errUsage) {
			fmt.Println(usage)
		}
	}
}

var errUsage = errors.New("usage")

func runCommand(ctx context.Context, a *station.Admin, cmd string, args []string) error {
	ints, err := parseInts(cmd, args)
	if err != nil {
		return err
	}
	switch cmd {
	case "aggiorna":
		return a.Refresh(ctx)
	case "dettagli":
		_, d, err := a.OrderDetails(ctx, ints[0])
		if err != nil {
			return err
		}
		fmt.Printf("Ordine #%d %s (%s) totale €%s\n", d.ID, d.NomeCliente, d.DataOrdine, d.Total().StringFixed(2))
		for _, it := range d.Items {
			fmt.Printf("  %d × %s\n", it.Quantita, it.Nome)
		}
		return nil
	case "rifornisci":
		return a.RestockProduct(ctx, ints[0], ints[1])
	case "aggiungi_prodotto":
		prezzo, err := decimal.NewFromString(args[3])
		if err != nil {
			fmt.Println("prezzo non valido:", args[3])
			return err
		}
		return a.AddProduct(ctx, posapi.NewProduct{
			Nome:               text(args[0]),
			CategoriaDashboard: text(args[1]),
			CategoriaMenu:      text(args[2]),
			Prezzo:             prezzo,
			Quantita:           ints[4],
			Disponibile:        ints[4] > 0,
		})
	case "modifica_prodotto":
		return a.UpdateProduct(ctx, posapi.ProductUpdate{
			ID:                 ints[0],
			Nome:               text(args[1]),
			CategoriaDashboard: text(args[2]),
			Quantita:           ints[3],
			Disponibile:        yes(args[4]),
		})
	case "elimina_prodotto":
		return a.DeleteProduct(ctx, ints[0])
	case "modifica_ordine":
		return a.UpdateOrder(ctx, posapi.OrderUpdate{
			IDOrdine:        ints[0],
			NomeCliente:     text(args[1]),
			NumeroTavolo:    args[2],
			NumeroPersone:   args[3],
			MetodoPagamento: args[4],
		})
	case "elimina_ordine":
		return a.DeleteOrder(ctx, ints[0])
	case "aggiungi_utente":
		return a.AddUser(ctx, posapi.NewUser{
			Username: args[0],
			Password: args[1],
			IsAdmin:  yes(args[2]),
			Attivo:   true,
			Permessi: strings.Split(args[3], ","),
		})
	case "modifica_utente":
		u := posapi.UserUpdate{
			IDUtente: ints[0],
			Username: args[1],
			IsAdmin:  yes(args[2]),
			Attivo:   yes(args[3]),
			Permessi: strings.Split(args[4], ","),
		}
		if len(args) > 5 {
			u.Password = args[5]
		}
		return a.UpdateUser(ctx, u)
	case "elimina_utente":
		return a.DeleteUser(ctx, ints[0])
	}
	return errUsage
}

// numeric arguments by position, per command
var intArgs = map[string][]int{
	"aggiorna":          {},
	"dettagli":          {0},
	"rifornisci":        {0, 1},
	"aggiungi_prodotto": {4},
	"modifica_prodotto": {0, 3},
	"elimina_prodotto":  {0},
	"modifica_ordine":   {0},
	"elimina_ordine":    {0},
	"aggiungi_utente":   {},
	"modifica_utente":   {0},
	"elimina_utente":    {0},
}

var minArgs = map[string]int{
	"dettagli":          1,
	"rifornisci":        2,
	"aggiungi_prodotto": 5,
	"modifica_prodotto": 5,
	"elimina_prodotto":  1,
	"modifica_ordine":   5,
	"elimina_ordine":    1,
	"aggiungi_utente":   4,
	"modifica_utente":   5,
	"elimina_utente":    1,
}

func parseInts(cmd string, args []string) (map[int]int, error) {
	pos, ok := intArgs[cmd]
	if !ok || len(args) < minArgs[cmd] {
		return nil, errUsage
	}
	out := make(map[int]int, len(pos))
	for _, i := range pos {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			fmt.Println("numero non valido:", args[i])
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func text(s string) string { return strings.ReplaceAll(s, "_", " ") }

func yes(s string) bool {
	switch strings.ToLower(s) {
	case "si", "sì", "true", "1":
		return true
	}
	return false
}
