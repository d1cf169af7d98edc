package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nadzzz/storevoice/internal/capability"
	"github.com/nadzzz/storevoice/internal/catalog"
	"github.com/nadzzz/storevoice/internal/config"
	"github.com/nadzzz/storevoice/internal/engine"
	"github.com/nadzzz/storevoice/internal/history"
	"github.com/nadzzz/storevoice/internal/session"
	"github.com/nadzzz/storevoice/internal/speech"
	"github.com/nadzzz/storevoice/internal/tts"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Type commands at a local storefront",
	Long: `Runs a command cycle for every line read from stdin against an in-memory
storefront built from the catalog. Lines starting with ':' are console
commands (:login <id>, :logout, :history, :quit).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			config.SetupLogging(config.LoggingConfig{Level: "warn", Format: "text"})
		}
		if file, _ := cmd.Flags().GetString("catalog"); file != "" {
			cfg.Catalog.File = file
		}
		static, err := loadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		if static == nil {
			static = catalog.NewStatic(nil)
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		classifier := newClassifier(cfg.Classifier)
		defer classifier.Close()

		var opts []speech.SpeakerOption
		if dir, _ := cmd.Flags().GetString("audio-dir"); dir != "" {
			opts = append(opts, speech.WithPlayer(audioFiles(dir)))
		}
		primary, fallback := newVoices(cfg.TTS)

		e := engine.New(engine.Options{
			SessionID:  "console",
			Classifier: classifier,
			Catalog:    static,
			Speaker:    speech.NewSpeaker(primary, fallback, opts...),
			Log:        history.New(cfg.History.Capacity),
		})
		defer e.Close()

		user, _ := cmd.Flags().GetString("user")
		c := newConsole(e, static, cmd.OutOrStdout())
		c.login(user)
		return c.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("user", "", "start signed in as this user id")
	consoleCmd.Flags().String("catalog", "", "YAML product catalog (overrides catalog.file)")
	consoleCmd.Flags().String("audio-dir", "", "write synthesized responses to this directory")
	consoleCmd.Flags().BoolP("verbose", "v", false, "keep the configured log level")
}

// console is an in-memory storefront that implements every capability
// against the catalog and prints what happens.
type console struct {
	engine  *engine.Engine
	catalog *catalog.Static
	out     io.Writer

	mu   sync.Mutex
	cart []session.Product
}

func newConsole(e *engine.Engine, c *catalog.Static, out io.Writer) *console {
	con := &console{engine: e, catalog: c, out: out}
	sess := e.Session()
	sess.SetProducts(c.Products(), "", "")
	sess.SetPage(session.PageHome, false)

	reg := e.Registry()
	reg.Register(capability.NavigateHome, func(context.Context, capability.Args) error {
		sess.SetProducts(c.Products(), "", "")
		sess.SetPage(session.PageHome, false)
		con.printf("  -> home\n")
		return nil
	})
	reg.Register(capability.BrowseProducts, func(_ context.Context, args capability.Args) error {
		products := c.Filter(args["category"], args["query"])
		sess.SetProducts(products, args["category"], args["query"])
		sess.SetPage(session.PageProducts, false)
		con.printf("  -> %d products\n", len(products))
		for i, p := range products {
			con.printf("     %d. %s (%s, %.1f stars)\n", i+1, p.Name, p.Category, p.Rating)
		}
		return nil
	})
	reg.Register(capability.AddToCart, func(_ context.Context, args capability.Args) error {
		return con.add(args["productId"])
	})
	reg.Register(capability.AddToCartByPosition, func(_ context.Context, args capability.Args) error {
		return con.add(args["productId"])
	})
	reg.Register(capability.ViewCart, func(context.Context, capability.Args) error {
		sess.SetPage(session.PageCart, false)
		con.mu.Lock()
		defer con.mu.Unlock()
		con.printf("  -> cart (%d items)\n", len(con.cart))
		for _, p := range con.cart {
			con.printf("     - %s\n", p.Name)
		}
		return nil
	})
	reg.Register(capability.GotoCheckout, func(context.Context, capability.Args) error {
		sess.SetPage(session.PageCheckout, true)
		con.printf("  -> checkout\n")
		return nil
	})
	reg.Register(capability.SelectAddress, func(_ context.Context, args capability.Args) error {
		con.printf("  -> address %s selected\n", args["identifier"])
		return nil
	})
	reg.Register(capability.SelectCard, func(_ context.Context, args capability.Args) error {
		con.printf("  -> card %s selected\n", args["identifier"])
		return nil
	})
	reg.Register(capability.SubmitOrder, func(context.Context, capability.Args) error {
		con.mu.Lock()
		defer con.mu.Unlock()
		if len(con.cart) == 0 {
			return errors.New("cart is empty")
		}
		con.printf("  -> order placed (%d items)\n", len(con.cart))
		con.cart = nil
		sess.SetPage(session.PageOrders, false)
		return nil
	})
	return con
}

func (c *console) add(productID string) error {
	products := slices.Concat(c.engine.Session().Snapshot().Products, c.catalog.Products())
	for _, p := range products {
		if p.ID != productID {
			continue
		}
		c.mu.Lock()
		c.cart = append(c.cart, p)
		c.mu.Unlock()
		c.printf("  -> cart += %s\n", p.Name)
		return nil
	}
	return fmt.Errorf("unknown product %q", productID)
}

func (c *console) login(userID string) {
	c.engine.Session().SetUser(userID)
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// run reads lines until EOF, :quit or ctx is done.
func (c *console) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	c.printf("storevoice console. Type a command, or :quit.\n> ")
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(l)
		}

		if strings.HasPrefix(line, ":") {
			if quit := c.meta(line); quit {
				return nil
			}
			c.printf("> ")
			continue
		}
		if line != "" {
			c.handle(ctx, line)
		}
		c.printf("> ")
	}
}

func (c *console) meta(line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":login":
		if len(fields) < 2 {
			c.printf("usage: :login <user id>\n")
			return false
		}
		c.login(fields[1])
		c.printf("signed in as %s\n", fields[1])
	case ":logout":
		c.login("")
		c.printf("signed out\n")
	case ":history":
		for _, e := range c.engine.History().Recent(0) {
			c.printf("  %s  %-22s %q\n", e.Timestamp.Local().Format(time.TimeOnly), e.Intent, e.Utterance)
		}
	default:
		c.printf("unknown command %s\n", fields[0])
	}
	return false
}

func (c *console) handle(ctx context.Context, line string) {
	out, err := c.engine.Listen(ctx, speech.Text(line))
	if err != nil {
		c.printf("  ! %v\n", err)
		return
	}
	c.printf("[%s] %s\n", out.Result.Kind, out.Result.Response)
	if out.Capability != "" {
		c.printf("  (%s: %s)\n", out.Capability, out.Dispatch)
	}
}

// audioFiles writes each synthesized response to dir.
func audioFiles(dir string) speech.Player {
	var n int
	return speech.PlayerFunc(func(_ context.Context, _ string, audio *tts.SynthesizeResult) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		n++
		ext := ".wav"
		if audio.ContentType == "audio/mpeg" {
			ext = ".mp3"
		}
		return os.WriteFile(filepath.Join(dir, fmt.Sprintf("response-%03d%s", n, ext)), audio.Audio, 0o644)
	})
}
