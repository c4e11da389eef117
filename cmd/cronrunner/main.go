// Command cronrunner is the external periodic trigger: it POSTs the two
// sweep endpoints on a fixed cadence with their pre-shared secrets. The
// server itself stays stateless; if this process dies mid-cycle the next
// tick simply re-runs the sweeps, which is safe because the idempotency
// flags are one-way.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"todo-planner/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}

	c := cron.New()
	spec := fmt.Sprintf("@every %ds", int(cfg.SweepInterval.Seconds()))
	_, err = c.AddFunc(spec, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		trigger(jobCtx, client, cfg.ServerURL+"/api/notifications/overdue", cfg.OverdueSecret)
		trigger(jobCtx, client, cfg.ServerURL+"/api/notifications/reminders", cfg.ReminderSecret)
	})
	if err != nil {
		log.Fatalf("schedule sweeps: %v", err)
	}

	c.Start()
	log.Printf("[info] cron runner started, interval %s", cfg.SweepInterval)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Println("Shutdown complete.")
}

func trigger(ctx context.Context, client *http.Client, url, secret string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		log.Printf("[error] build request %s: %v", url, err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[error] trigger %s: %v", url, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log.Printf("[info] %s -> %s %s", url, resp.Status, body)
}
