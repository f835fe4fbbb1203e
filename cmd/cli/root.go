package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/keshon/economy-bot/internal/app"
	"github.com/keshon/economy-bot/internal/command"
	"github.com/keshon/economy-bot/internal/command/eco"
	"github.com/keshon/economy-bot/internal/config"
	"github.com/keshon/economy-bot/internal/ledger"
	"github.com/keshon/economy-bot/internal/logging"
	"github.com/keshon/economy-bot/internal/permission"
)

type cli struct {
	in     io.Reader
	out    io.Writer
	memory bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}
	info := app.BuildInfo()

	root := &cobra.Command{
		Use:           "economy",
		Short:         info.Project + " admin and local console",
		Version:       info.Version + " (" + info.Commit + ", " + info.GoVersion + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&c.memory, "memory", false, "keep balances and cooldowns in memory")

	root.AddCommand(
		c.replCmd(),
		c.balanceCmd(),
		c.grantCmd(),
		c.transferCmd(),
		c.commandsCmd(),
	)
	return root
}

// open loads config and builds the application.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.Options{Memory: c.memory})
}

// console prints replies and reactions to the terminal.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func (t *console) Send(_ context.Context, _, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, text)
	return err
}

func (t *console) React(_ context.Context, _, _, emoji string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.out, "(%s)\n", emoji)
	return err
}

func (c *cli) replCmd() *cobra.Command {
	var user, tier, guild string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Type messages as a chat user and see the bot's replies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			actorTier, err := permission.ParseTier(tier)
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.Dispatcher(&console{out: c.out})
			scanner := bufio.NewScanner(c.in)
			n := 0
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				n++
				d.Handle(cmd.Context(), command.Event{
					ID:             strconv.Itoa(n),
					AuthorID:       user,
					AuthorName:     user,
					GuildID:        guild,
					ChannelID:      "console",
					Content:        line,
					BotPermissions: permission.Base | permission.AttachFiles | permission.ManageMessages,
					ActorTier:      actorTier,
				})
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&user, "user", "1", "author user id")
	cmd.Flags().StringVar(&tier, "tier", "user", "author tier: user, moderator or owner")
	cmd.Flags().StringVar(&guild, "guild", "console", "guild id")
	return cmd
}

func (c *cli) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user>",
		Short: "Show a user's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Ledger.GetBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printEntry(a, e)
			return nil
		},
	}
}

func (c *cli) grantCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "grant <user> <amount>",
		Short: "Add (or with a negative amount, remove) money",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			f, err := ledger.ParseField(field)
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Ledger.AddBalance(cmd.Context(), args[0], ledger.Of(f, amount))
			if err != nil {
				return err
			}
			c.printEntry(a, e)
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "wallet", "wallet or bank")
	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	var fromField, toField string
	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move money between users or between one user's wallet and bank",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			ff, err := ledger.ParseField(fromField)
			if err != nil {
				return err
			}
			tf, err := ledger.ParseField(toField)
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			src, dst, err := a.Ledger.Transfer(cmd.Context(), args[0], args[1], amount, ff, tf)
			if err != nil {
				return err
			}
			c.printEntry(a, src)
			if src.UserID != dst.UserID {
				c.printEntry(a, dst)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromField, "from-field", "wallet", "debited field")
	cmd.Flags().StringVar(&toField, "to-field", "wallet", "credited field")
	return cmd
}

func (c *cli) printEntry(a *app.App, e ledger.Entry) {
	money := eco.Money(a.Config.CurrencySymbol)
	fmt.Fprintf(c.out, "%s wallet=%s bank=%s total=%s\n",
		e.UserID, money.Format(e.Wallet), money.Format(e.Bank), money.Format(e.Total()))
}

// commandsCmd prints the command reference as markdown, grouped by category.
func (c *cli) commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "Print the chat command reference as markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.memory = true
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sections := make(map[string][]command.Handler)
			var order []string
			for _, h := range a.Registry.All() {
				cat := h.Category()
				if _, ok := sections[cat]; !ok {
					order = append(order, cat)
				}
				sections[cat] = append(sections[cat], h)
			}
			command.SortCategories(order)

			prefix := a.Config.CommandPrefix
			for _, cat := range order {
				fmt.Fprintf(c.out, "### %s\n\n", cat)
				for _, h := range sections[cat] {
					fmt.Fprintf(c.out, "* **`%s%s`**", prefix, h.Name())
					if h.Tier() > permission.User {
						fmt.Fprintf(c.out, " (%s)", h.Tier())
					}
					fmt.Fprintf(c.out, "\n  %s\n", h.Description())
					if aliases := h.Aliases(); len(aliases) > 0 {
						fmt.Fprintf(c.out, "  Aliases: %s\n", strings.Join(aliases, ", "))
					}
					fmt.Fprintln(c.out)
				}
			}
			return nil
		},
	}
}
