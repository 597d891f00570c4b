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

	"github.com/ariefcatur/resto-pos/internal/config"
	"github.com/ariefcatur/resto-pos/internal/logging"
	"github.com/ariefcatur/resto-pos/internal/posapi"
	"github.com/ariefcatur/resto-pos/internal/realtime"
	"github.com/ariefcatur/resto-pos/internal/station"
	"github.com/ariefcatur/resto-pos/internal/statussync"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New("dashboard", cfg.LogLevel)
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

	opts := []statussync.Option{statussync.WithObserver(func(c statussync.Card) {
		fmt.Printf("#%d %s%s\n", c.ID, c.Status, inertMark(c))
	})}
	if cfg.StatusPendingGuard {
		opts = append(opts, statussync.WithPendingGuard())
	}
	alert := station.AlertFunc(func(msg string) { fmt.Println("!!", msg) })
	d := station.NewDashboard(cfg.DashboardHeading, api, alert, log, opts...)
	if err := d.Refresh(ctx); err != nil {
		log.Warn("initial refresh failed", "err", err)
	}

	rc, err := realtime.Dial(ctx, cfg.RelayURL, nil, log)
	if err != nil {
		log.Error("relay", "err", err)
		os.Exit(1)
	}
	defer rc.Close()

	// realtime consumer
	go func() {
		if err := d.Run(ctx, rc); err != nil {
			log.Error("realtime stopped", "err", err)
			cancel()
		}
	}()

	go readCommands(ctx, d)

	<-ctx.Done()
	log.Info("shutting down dashboard...")
}

// readCommands: "avanza <id>", "aggiorna", "lista".
func readCommands(ctx context.Context, d *station.Dashboard) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "avanza":
			if len(fields) < 2 {
				fmt.Println("uso: avanza <id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("id non valido:", fields[1])
				continue
			}
			// the next command is read while this change is in flight
			go printOutcome(d.AdvanceAsync(ctx, id))
		case "aggiorna":
			_ = d.Refresh(ctx)
			printCards(d)
		case "lista":
			printCards(d)
		default:
			fmt.Println("comandi: avanza <id>, aggiorna, lista")
		}
	}
}

func printOutcome(res <-chan statussync.Outcome) {
	out := <-res
	switch {
	case out.Err != nil && out.Skipped:
		fmt.Println("ignorato:", out.Err)
	case out.Skipped:
		fmt.Println("nessun cambio per", out.OrderID)
	case out.RolledBack:
		fmt.Printf("#%d ripristinato a %s\n", out.OrderID, out.Final)
	}
}

func printCards(d *station.Dashboard) {
	fmt.Printf("Dashboard %s\n", d.Category())
	for _, c := range d.Board().Cards() {
		fmt.Printf("  #%d %s%s\n", c.ID, c.Status, inertMark(c))
	}
}

func inertMark(c statussync.Card) string {
	if c.Inert() {
		return " (completato)"
	}
	return ""
}
