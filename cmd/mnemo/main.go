package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/mnemo/internal/cli"
	"github.com/alexanderramin/mnemo/internal/config"
	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/alexanderramin/mnemo/internal/study"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory may carry MNEMO_* settings.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}

	var database *sql.DB
	defer func() {
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	app.Setup = func(cmd *cobra.Command) error {
		cfg, err := config.Load(dir, cmd.Flags())
		if err != nil {
			return err
		}
		variant, err := study.ParseVariant(cfg.Study.Variant)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

		database, err = db.OpenDB(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}

		// Wire repositories and the unit of work for transactional operations
		stores := study.StoresFor(database)
		uow := db.NewSQLiteUnitOfWork(database)

		var observers []service.UseCaseObserver
		if cfg.Log.UseCases {
			observers = append(observers, service.NewLogUseCaseObserver(os.Stderr, slog.LevelInfo))
		}

		sched := study.NewScheduler(stores, uow,
			study.WithVariant(variant),
			study.WithQueueLimit(cfg.Study.QueueLimit),
			study.WithLogger(logger),
		)

		app.Decks = service.NewDeckService(stores.Decks, uow, observers...)
		app.Notes = service.NewNoteService(stores.Notes, stores.Cards, uow, observers...)
		app.Study = service.NewStudyService(sched, stores.Cards, stores.Notes, uow, observers...)
		app.Overview = service.NewOverviewService(sched, stores.Revlog, observers...)

		return app.Study.Configure(cmd.Context(), service.CollectionSettings{
			RolloverHour:  cfg.Study.RolloverHour,
			CollapseTime:  cfg.Study.CollapseTime(),
			DayLearnFirst: cfg.Study.DayLearnFirst,
			NewSpread:     domain.NewSpread(cfg.Study.NewSpread),
		})
	}

	return cli.NewRootCmd(app).Execute()
}
