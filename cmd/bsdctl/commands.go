package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"trackdechets/internal/config"
	"trackdechets/internal/database"
	"trackdechets/internal/database/migration"
	"trackdechets/internal/logging"
	"trackdechets/internal/model"
	"trackdechets/internal/pdf"
	"trackdechets/internal/repository/postgres"
	"trackdechets/internal/service"
	"trackdechets/internal/validation"
)

// errViolations makes validate exit non-zero once the report is printed.
var errViolations = errors.New("document has validation errors")

func newLogger(w io.Writer) *zap.Logger {
	cfg := config.Load()
	return logging.NewWithWriter(w, zapcore.InfoLevel, cfg.Location())
}

func openDB(ctx context.Context, log *zap.Logger) (*sql.DB, *config.AppConfig, error) {
	cfg := config.Load()
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, cfg, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr())
			db, cfg, err := openDB(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer db.Close()
			return migration.EnsureMigrated(cmd.Context(), db, log, cfg.Database.Host)
		},
	}
}

func newValidateCmd() *cobra.Command {
	var kind, stage, companies string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a document file against the requirements of a signature",
		Long: `Validates a JSON document offline. Without --stage every signature is checked,
which is what the document metadata reports. Companies referenced by grouping
operations are looked up in the --companies file (YAML or JSON list).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := loadCompanies(companies)
			if err != nil {
				return err
			}
			t, err := toolFor(kind, lookup)
			if err != nil {
				return err
			}
			c := validation.AllStages()
			if stage != "" {
				st, err := model.ParseStage(stage)
				if err != nil {
					return err
				}
				c = validation.ContextFor(st)
			}
			doc, err := readDocument(t, args[0])
			if err != nil {
				return err
			}
			errs, err := t.validate(cmd.Context(), doc, c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(errs) == 0 {
				fmt.Fprintln(out, "OK")
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(errs); err != nil {
				return err
			}
			return errViolations
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "document kind (bsdasri, bsff, bsvhu)")
	cmd.Flags().StringVarP(&stage, "stage", "s", "", "signature to check (emission, transport, reception, operation)")
	cmd.Flags().StringVar(&companies, "companies", "", "file listing the registered companies")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newRequiredForCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "required-for PATH",
		Short: "Print the signatures that require a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := toolFor(kind, nil)
			if err != nil {
				return err
			}
			stages := t.requiredFor(args[0])
			if len(stages) == 0 {
				return fmt.Errorf("no signature declares %q", args[0])
			}
			names := make([]string, len(stages))
			for i, st := range stages {
				names[i] = string(st)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "document kind (bsdasri, bsff, bsvhu)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newRenderPDFCmd() *cobra.Command {
	var kind, output string
	var htmlOnly bool
	cmd := &cobra.Command{
		Use:   "render-pdf FILE",
		Short: "Print a document file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := toolFor(kind, nil)
			if err != nil {
				return err
			}
			doc, err := readDocument(t, args[0])
			if err != nil {
				return err
			}
			data, err := pdf.BuildData(doc, t.layout(), time.Now())
			if err != nil {
				return err
			}

			var body []byte
			if htmlOnly {
				body, err = pdf.HTML(data)
			} else {
				cfg := config.Load()
				r := pdf.NewRodRenderer(cfg.PDF, newLogger(cmd.ErrOrStderr()))
				defer r.Close()
				ctx, cancel := context.WithTimeout(cmd.Context(), cfg.PDF.Timeout)
				defer cancel()
				body, err = r.Render(ctx, data)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(output, body, 0o644)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "document kind (bsdasri, bsff, bsvhu)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, stdout when empty")
	cmd.Flags().BoolVar(&htmlOnly, "html", false, "write the HTML page instead of the PDF")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}

	var email, name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a user and print its access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openDB(cmd.Context(), newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer db.Close()
			return createUser(cmd.Context(), cmd.OutOrStdout(), service.NewAuthService(postgres.NewUserPostgres(db)), email, name)
		},
	}
	create.Flags().StringVar(&email, "email", "", "user email")
	create.Flags().StringVar(&name, "name", "", "display name")
	_ = create.MarkFlagRequired("email")

	user.AddCommand(create)
	return user
}

// createUser prints the token once; only its hash is stored.
func createUser(ctx context.Context, w io.Writer, auth service.AuthService, email, name string) error {
	u, token, err := auth.CreateUser(ctx, email, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "user:  %s\ntoken: %s\n", u.ID, token)
	return nil
}
