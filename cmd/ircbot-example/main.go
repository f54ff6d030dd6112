// Command ircbot-example is a minimal demonstration bot: it connects,
// joins configured channels, echoes channel chatter to stdout, and
// replies to "!ping" with "pong". Configuration is loaded from a .env
// file and an optional bot.toml, showing how an embedding application
// wires pircbot.Config without the core package knowing about either
// format.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pircbot-go/pircbot"
	"github.com/pircbot-go/pircbot/metrics"
)

// fileConfig is the shape of the optional bot.toml overlay. Fields left
// zero fall back to environment variables, then to hardcoded defaults.
type fileConfig struct {
	Server         string   `toml:"server"`
	Port           int      `toml:"port"`
	SSL            bool     `toml:"ssl"`
	Nick           string   `toml:"nick"`
	UserName       string   `toml:"username"`
	RealName       string   `toml:"realname"`
	Channels       []string `toml:"channels"`
	MetricsAddr    string   `toml:"metrics_addr"`
}

func main() {
	_ = godotenv.Load()

	var fc fileConfig
	if _, err := os.Stat("bot.toml"); err == nil {
		if _, err := toml.DecodeFile("bot.toml", &fc); err != nil {
			log.Fatalf("bot.toml: %v", err)
		}
	}

	server := firstNonEmpty(fc.Server, os.Getenv("IRC_SERVER"), "irc.libera.chat")
	port := fc.Port
	if port == 0 {
		port, _ = strconv.Atoi(os.Getenv("IRC_PORT"))
	}
	if port == 0 {
		port = 6697
	}
	nick := firstNonEmpty(fc.Nick, os.Getenv("IRC_NICK"), "pircbot-example")
	userName := firstNonEmpty(fc.UserName, os.Getenv("IRC_USERNAME"), "pircbot")
	realName := firstNonEmpty(fc.RealName, os.Getenv("IRC_REALNAME"), "pircbot example")

	channels := fc.Channels
	if len(channels) == 0 {
		if raw := os.Getenv("IRC_CHANNEL"); raw != "" {
			channels = []string{raw}
		}
	}

	metricsAddr := firstNonEmpty(fc.MetricsAddr, os.Getenv("METRICS_ADDR"), ":9090")

	collectors := metrics.NewCollectors()
	reg := prometheus.NewRegistry()
	collectors.MustRegister(reg)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Printf("metrics listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	client := pircbot.New(pircbot.Config{
		ConnectionSettings: pircbot.ConnectionSettings{
			Server:    server,
			Port:      port,
			SSL:       port == 6697 || fc.SSL,
			VerifySSL: true,
		},
		Identity: pircbot.Identity{
			Nick:     nick,
			UserName: userName,
			RealName: realName,
		},
		Verbose:        os.Getenv("IRC_VERBOSE") == "1",
		AutoNickChange: true,
		Channels:       channels,
		RecoverFunc:    pircbot.DefaultRecoverHandler,
		Debug:          os.Stderr,
		Out:            os.Stdout,
		Metrics:        collectors,
	})

	client.Handlers.Add(pircbot.CapChat, func(c *pircbot.Client, e *pircbot.Event) {
		if e.Command != pircbot.EvMsgChannel || len(e.Params) == 0 || e.Source == nil {
			return
		}
		if e.Trailing == "!ping" {
			_ = c.Cmd.Message(e.Params[0], "pong")
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if err := client.Connect(client.Config.ConnectionSettings); err != nil {
		log.Fatalf("connect: %v", err)
	}

	<-sigCh
	_ = client.Disconnect("shutting down")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
