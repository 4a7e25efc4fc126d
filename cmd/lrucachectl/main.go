package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/lrucache"
	"github.com/unkn0wn-root/lrucache/codec"
	"github.com/unkn0wn-root/lrucache/config"
	lzap "github.com/unkn0wn-root/lrucache/log/zap"
)

const usage = `Usage: lrucachectl [flags] COMMAND [ARGS]

Commands:
  keys                 list cached keys
  get KEY              print the raw value of KEY
  del KEY...           delete keys
  clean [PATTERN...]   delete keys matching glob patterns (default "**")
  ping                 check the store connection`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, argv []string, out io.Writer) error {
	flags := flag.NewFlagSet("lrucachectl", flag.ContinueOnError)
	var (
		cfgPath   = flags.String("config", "", "config file (yaml, json, toml)")
		redisURL  = flags.String("redis", "", "redis URL or host:port; overrides config")
		namespace = flags.String("namespace", "", "key namespace; overrides config")
		timeout   = flags.Duration("timeout", 10*time.Second, "command timeout")
		verbose   = flags.Bool("v", false, "log store commands")
	)
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flags.Args()
	if len(args) < 1 {
		return errors.New(usage)
	}

	cfg, err := config.Load(*cfgPath, ".env")
	if err != nil {
		return err
	}
	if *redisURL != "" {
		cfg.Redis = *redisURL
	}
	if *namespace != "" {
		cfg.Namespace = *namespace
	}
	// a one-shot command has no use for the keep-alive loop
	cfg.PingInterval = 0

	opts, err := config.Options[[]byte](cfg)
	if err != nil {
		return err
	}
	opts.Codec = codec.Bytes{}
	opts.Monitor = opts.Monitor || *verbose

	zl := zap.NewNop()
	if *verbose {
		if zl, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = zl.Sync() }()
	opts.Logger = lzap.New(zl)

	cache, err := lrucache.New[[]byte](opts)
	if err != nil {
		return err
	}
	defer cache.Close(context.Background())

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "keys":
		keys, err := cache.Keys(ctx)
		if err != nil {
			return fmt.Errorf("keys: %w", err)
		}
		for _, k := range keys {
			fmt.Fprintln(out, k.Key)
		}
	case "get":
		if len(rest) != 1 {
			return errors.New("get: exactly one KEY is required")
		}
		v, ok, err := cache.Get(ctx, rest[0])
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		if !ok {
			return fmt.Errorf("get: %s: not found", rest[0])
		}
		fmt.Fprintf(out, "%s\n", v)
	case "del":
		if len(rest) == 0 {
			return errors.New("del: at least one KEY is required")
		}
		removed, err := cache.Del(ctx, rest...)
		if err != nil {
			return fmt.Errorf("del: %w", err)
		}
		n := 0
		for _, ok := range removed {
			if ok {
				n++
			}
		}
		fmt.Fprintf(out, "deleted %d of %d\n", n, len(rest))
	case "clean":
		if err := cache.Clean(ctx, rest...); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	case "ping":
		if err := cache.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		fmt.Fprintln(out, "PONG")
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
	return nil
}
