package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/config"
	"github.com/llehouerou/odeon/internal/errmsg"
	"github.com/llehouerou/odeon/internal/logging"
	"github.com/llehouerou/odeon/internal/mediaid"
	"github.com/llehouerou/odeon/internal/mediastore"
	"github.com/llehouerou/odeon/internal/queue"
	"github.com/llehouerou/odeon/internal/state"
)

const usage = `usage: odeon [-config path] <command>

commands:
  browse [id]     list the children of a media id (the root when omitted)
  play [id]       prepare a queue for id (the last played id when omitted)
  resume          show the saved queue
  search <query>  search tracks by title, artist and album
  random          pick a random track
  stats           show catalog counts
`

type app struct {
	log      zerolog.Logger
	stateMgr *state.Manager
	catalog  *catalog.Catalog
	preparer *queue.Preparer
	stats    catalog.LoadStats
}

func initialApp(ctx context.Context, configPath string) (*app, error) {
	var extra []string
	if configPath != "" {
		extra = append(extra, configPath)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, cfg.GetLogLevel())

	stateMgr, err := state.Open()
	if err != nil {
		return nil, err
	}

	cat := catalog.New(
		catalog.WithLogger(logging.Component(log, "catalog")),
		catalog.WithArtBase(cfg.GetCatalogConfig().ArtBase),
		catalog.WithPlaylists(stateMgr),
	)

	stats, err := cat.Refresh(ctx, mediaSource(cfg, log))
	if err != nil && !errors.Is(err, catalog.ErrSourceUnavailable) {
		stateMgr.Close()
		return nil, errors.New(errmsg.Format(errmsg.OpCatalogLoad, err))
	}

	return &app{
		log:      log,
		stateMgr: stateMgr,
		catalog:  cat,
		preparer: queue.NewPreparer(cat, stateMgr,
			queue.WithLogger(logging.Component(log, "queue")),
			queue.WithShuffle(cfg.Queue.Shuffle),
		),
		stats: stats,
	}, nil
}

// mediaSource picks the row source named by the config.
func mediaSource(cfg *config.Config, log zerolog.Logger) catalog.Source {
	log = logging.Component(log, "mediastore")
	if cfg.GetSource() == config.SourceSQLite {
		return mediastore.FileSource(cfg.GetMediaDB(), mediastore.WithLogger(log))
	}
	return mediastore.NewScanner(cfg.LibrarySources, mediastore.WithLogger(log))
}

func (a *app) Close() {
	if err := a.stateMgr.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close state")
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	if cmd != "stats" && !a.catalog.IsReady() {
		return errors.New("no music found, check library_sources or media_db in the config")
	}

	switch cmd {
	case "browse":
		return a.browse(args)
	case "play":
		return a.play(ctx, args)
	case "resume":
		q, err := a.preparer.Resume(ctx)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpQueueResume, err))
		}
		fmt.Print(renderQueue(q))
		return nil
	case "search":
		query := strings.Join(args, " ")
		if query == "" {
			return errors.New("search needs a query")
		}
		fmt.Print(renderItems(a.catalog.Search(query)))
		return nil
	case "random":
		t, ok := a.catalog.RandomTrack(nil)
		if !ok {
			return errors.New("catalog is empty")
		}
		fmt.Print(renderTrack(mediaid.New(mediaid.CategoryDaily).WithLeaf(t.ID), t))
		return nil
	case "stats":
		fmt.Print(renderStats(a.catalog, a.stats))
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) browse(args []string) error {
	if len(args) == 0 {
		fmt.Print(renderItems(a.catalog.Root()))
		return nil
	}
	id, err := catalog.ParseAddress(args[0])
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCatalogBrowse, args[0], err))
	}
	items, err := a.catalog.Browse(id)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpCatalogBrowse, args[0], err))
	}
	fmt.Print(renderItems(items))
	return nil
}

func (a *app) play(ctx context.Context, args []string) error {
	var (
		q   *queue.Queue
		err error
	)
	if len(args) == 0 {
		q, err = a.preparer.PrepareDefault(ctx)
	} else {
		q, err = a.preparer.Prepare(ctx, args[0])
	}
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueuePrepare, err))
	}
	fmt.Print(renderQueue(q))
	return nil
}

func main() {
	configPath := flag.String("config", "", "extra config file applied last")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := initialApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(errmsg.Format(errmsg.OpInitialize, err)))
		os.Exit(1)
	}

	err = a.run(ctx, flag.Arg(0), flag.Args()[1:])
	a.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
