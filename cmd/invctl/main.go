// invctl drives the inventory service from a terminal: the same login,
// search and save flows the web form offers, against the same documents.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Rod1202/print-inv/internal/config"
	"github.com/Rod1202/print-inv/internal/core"
	mongorepo "github.com/Rod1202/print-inv/internal/repo/mongo"
	"github.com/Rod1202/print-inv/internal/seed"
	"github.com/Rod1202/print-inv/internal/service"
	"github.com/Rod1202/print-inv/internal/store/github"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfgPath string
	user    string
	verbose bool

	svc *service.Service
	col core.Collection
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "invctl",
		Short:         "Registro de inventario de impresoras y scanners",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.Getenv("CONFIG", ""), "ruta del archivo de configuración YAML")
	root.PersistentFlags().StringVarP(&a.user, "user", "u", "", "usuario operador")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "logs de depuración")
	root.AddCommand(a.showCmd(), a.findCmd(), a.saveCmd(), a.auditCmd())
	return root
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [serie]",
		Short: "Muestra el inventario completo o un registro",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.login(cmd.Context()); err != nil {
				return err
			}
			if len(args) == 1 {
				rec, ok := a.col.Find(args[0])
				if !ok {
					return fmt.Errorf("serie %s no registrada", args[0])
				}
				return printJSON(rec)
			}
			return printJSON(a.col)
		},
	}
}

func (a *app) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <texto>",
		Short: "Busca registros por serie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.login(cmd.Context()); err != nil {
				return err
			}
			matches := a.col.Search(args[0])
			if len(matches) == 0 {
				fmt.Println("Sin coincidencias.")
				return nil
			}
			return printJSON(matches)
		},
	}
}

func (a *app) saveCmd() *cobra.Command {
	var serie, uso, serieReemplazo string
	cmd := &cobra.Command{
		Use:   "save [form.json]",
		Short: "Guarda un registro (creación, edición o reemplazo)",
		Long: "Lee el formulario desde un archivo JSON (o stdin con \"-\") y lo " +
			"sincroniza. Los flags pisan los campos homónimos del formulario.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readForm(args)
			if err != nil {
				return err
			}
			if serie != "" {
				req.Serie = serie
			}
			if uso != "" {
				req.Uso = uso
			}
			if serieReemplazo != "" {
				req.SerieReemplazo = serieReemplazo
			}
			if err := a.login(cmd.Context()); err != nil {
				return err
			}
			out, err := a.svc.Save(cmd.Context(), a.user, req)
			if err != nil {
				return err
			}
			for _, e := range out.Events {
				fmt.Printf("%s %s: %s\n", e.Accion, e.Serie, e.Detalle)
			}
			fmt.Printf("Registro guardado. Inventario con %d items.\n", len(out.Inventory))
			return printJSON(out.Active)
		},
	}
	cmd.Flags().StringVar(&serie, "serie", "", "serie del equipo")
	cmd.Flags().StringVar(&uso, "uso", "", "uso del equipo (Produccion, Backup, Reemplazo, ...)")
	cmd.Flags().StringVar(&serieReemplazo, "serie-reemplazo", "", "serie del equipo nuevo cuando uso=Reemplazo")
	return cmd
}

func (a *app) auditCmd() *cobra.Command {
	var f service.Filter
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Lista los eventos del log de cambios, el más nuevo primero",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.login(cmd.Context()); err != nil {
				return err
			}
			list, err := a.svc.Audits(cmd.Context(), f)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("Sin eventos.")
				return nil
			}
			return printJSON(list)
		},
	}
	cmd.Flags().StringVar(&f.Usuario, "usuario", "", "filtra por usuario")
	cmd.Flags().StringVar(&f.Accion, "accion", "", "filtra por acción")
	cmd.Flags().StringVar(&f.Serie, "serie", "", "filtra por serie")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "máximo de eventos")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "eventos a saltar")
	return cmd
}

// login builds the service from config and authenticates the operator,
// keeping the bootstrapped collection for the command body.
func (a *app) login(ctx context.Context) error {
	if a.user == "" {
		return fmt.Errorf("falta --user")
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inv := cfg.Inventario
	store := github.New(github.Config{
		BaseURL: inv.GitHub.BaseURL,
		Owner:   inv.GitHub.Owner,
		Repo:    inv.GitHub.Repo,
		Token:   inv.GitHub.Token,
		Timeout: inv.GitHub.Timeout,
	})
	var mirror service.Mirror
	if inv.Mongo.URI != "" {
		repo, err := mongorepo.New(ctx, mongorepo.Config{
			URI:           inv.Mongo.URI,
			DB:            inv.Mongo.DB,
			Collection:    inv.Mongo.Collection,
			RetentionDays: inv.Mongo.RetentionDays,
		})
		if err != nil {
			return err
		}
		mirror = repo
	}
	audit := service.NewAuditLogger(store, mirror, inv.GitHub.LogPath, logger)
	a.svc = service.New(store, audit, service.Config{
		InventoryPath: inv.GitHub.InventoryPath,
		Durability:    service.Durability(inv.Durability),
		Users:         cfg.Users(),
		Seed:          seed.Inventory(),
	}, logger)

	pw, err := promptPassword()
	if err != nil {
		return err
	}
	col, err := a.svc.Login(ctx, a.user, pw)
	if err != nil {
		return err
	}
	a.col = col
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Contraseña: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func readForm(args []string) (service.SaveRequest, error) {
	var req service.SaveRequest
	if len(args) == 0 {
		return req, nil
	}
	var raw []byte
	var err error
	if args[0] == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("formulario inválido: %w", err)
	}
	return req, nil
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
