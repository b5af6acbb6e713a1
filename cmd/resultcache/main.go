// Command resultcache inspects and invalidates a result cache namespace in Redis.
//
//	resultcache [flags] ping
//	resultcache [flags] get <key>
//	resultcache [flags] del <key>
//	resultcache [flags] clear
//
// REDIS_URL and RESULTCACHE_PREFIX provide defaults for -url and -prefix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/resultcache"
	zl "github.com/unkn0wn-root/resultcache/log/zerolog"
)

var (
	errUsage  = errors.New("usage")
	errAbsent = errors.New("key not found")
)

type config struct {
	url     string
	prefix  string
	timeout time.Duration
	debug   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	case errors.Is(err, errAbsent):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "resultcache: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cfg config
	fs := flag.NewFlagSet("resultcache", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.url, "url", getEnv("REDIS_URL", "redis://localhost:6379/0"), "redis URL")
	fs.StringVar(&cfg.prefix, "prefix", getEnv("RESULTCACHE_PREFIX", resultcache.DefaultKeyPrefix), "key namespace")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "how long to wait for redis")
	fs.BoolVar(&cfg.debug, "debug", false, "log every cache operation")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: resultcache [flags] ping | get <key> | del <key> | clear")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cmd, rest := fs.Arg(0), fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}
	want := map[string]int{"ping": 0, "get": 1, "del": 1, "clear": 0}
	n, ok := want[cmd]
	if !ok || len(rest) != n {
		fs.Usage()
		return errUsage
	}

	level := zerolog.InfoLevel
	if cfg.debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	cache, err := resultcache.New(resultcache.Options[any]{
		Connection: resultcache.ConnectionConfig{URL: cfg.url, MaxRetries: -1},
		KeyPrefix:  cfg.prefix,
		Debug:      cfg.debug,
		Logger:     zl.Logger{L: log},
	})
	if err != nil {
		return err
	}
	defer cache.Close(context.Background())

	wctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()
	if err := cache.WaitReady(wctx); err != nil {
		return fmt.Errorf("redis not reachable at %s: %w", cfg.url, err)
	}

	switch cmd {
	case "ping":
		fmt.Fprintf(stdout, "PONG namespace=%s\n", cache.Namespace())
	case "get":
		v, ok := cache.Get(ctx, rest[0])
		if !ok {
			fmt.Fprintln(stdout, "(absent)")
			return errAbsent
		}
		fmt.Fprintf(stdout, "%#v\n", v)
	case "del":
		if err := cache.Remove(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "OK")
	case "clear":
		if err := cache.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleared namespace=%s\n", cache.Namespace())
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
