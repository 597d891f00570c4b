package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ariefcatur/resto-pos/internal/cart"
	"github.com/ariefcatur/resto-pos/internal/catalog"
	"github.com/ariefcatur/resto-pos/internal/config"
	"github.com/ariefcatur/resto-pos/internal/logging"
	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/posapi"
	"github.com/ariefcatur/resto-pos/internal/station"
	"github.com/joho/godotenv"
)

const help = `comandi:
  prodotti                 elenco prodotti
  + <id>                   aggiungi una unità
  - <id>                   togli una unità
  rimuovi <id>             togli la riga
  asporto on|off           ordine da asporto
  nome|tavolo|persone <v>  dati cliente
  pagamento Contanti|Carta
  carrello                 riepilogo
  invia                    invia l'ordine
  svuota                   svuota il carrello`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New("cassa", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	products, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		log.Error("catalog", "file", cfg.CatalogFile, "err", err)
		os.Exit(1)
	}
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
	c := station.NewCashier(products, api, alert, log, cart.WithRenderer(printSummary))
	byID := make(map[int]orders.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	fmt.Println(help)
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			handle(ctx, c, byID, products, line)
		}
	}
}

func handle(ctx context.Context, c *station.Cashier, byID map[int]orders.Product, products []orders.Product, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	id, _ := strconv.Atoi(arg)

	switch fields[0] {
	case "prodotti":
		for _, p := range products {
			st, _ := c.Cart.Card(p.ID)
			fmt.Printf("  %3d %-28s €%s  disp. %d  nel carrello %d\n", p.ID, p.Nome, p.Prezzo.StringFixed(2), p.Quantita, st.Quantity)
		}
	case "+":
		p, ok := byID[id]
		if !ok {
			fmt.Println("prodotto sconosciuto:", arg)
			return
		}
		c.Cart.AddFromCatalog(p)
	case "-":
		c.Cart.RemoveOneUnit(id)
	case "rimuovi":
		c.Cart.RemoveLine(id)
	case "asporto":
		c.Form.SetTakeaway(arg == "on")
	case "nome":
		c.Form.SetNomeCliente(arg)
	case "tavolo":
		c.Form.SetNumeroTavolo(arg)
	case "persone":
		c.Form.SetNumeroPersone(arg)
	case "pagamento":
		c.Form.SetMetodoPagamento(arg)
	case "carrello":
		printSummary(c.Cart.Summary())
	case "invia":
		if orderID, err := c.Submit(ctx); err == nil {
			fmt.Printf("Ordine #%d inviato.\n", orderID)
		}
	case "svuota":
		c.Cart.Clear()
	default:
		fmt.Println(help)
	}
}

func printSummary(s cart.Summary) {
	if len(s.Rows) == 0 {
		fmt.Println("  (carrello vuoto)")
		return
	}
	for _, r := range s.Rows {
		fmt.Printf("  %dx %-28s €%s\n", r.Quantity, r.Name, r.Subtotal.StringFixed(2))
	}
	fmt.Println("  Totale:", s.FormattedTotal())
}
