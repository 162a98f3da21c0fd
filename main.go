package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/cast"
	"github.com/zaptrax/zaptrax/internal/config"
	"github.com/zaptrax/zaptrax/internal/errmsg"
	"github.com/zaptrax/zaptrax/internal/lastfm"
	"github.com/zaptrax/zaptrax/internal/mpris"
	"github.com/zaptrax/zaptrax/internal/nostr"
	"github.com/zaptrax/zaptrax/internal/notify"
	"github.com/zaptrax/zaptrax/internal/playback"
	"github.com/zaptrax/zaptrax/internal/player"
	"github.com/zaptrax/zaptrax/internal/playlist"
	"github.com/zaptrax/zaptrax/internal/social"
	"github.com/zaptrax/zaptrax/internal/state"
	"github.com/zaptrax/zaptrax/internal/status"
)

func main() {
	linkLastfm := flag.Bool("link-lastfm", false, "link a Last.fm account and exit")
	flag.Parse()

	if err := run(*linkLastfm); err != nil {
		fmt.Fprintf(os.Stderr, "zaptrax: %v\n", err)
		os.Exit(1)
	}
}

func run(linkLastfm bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if linkLastfm {
		return runLastfmLink(cfg)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stderr sync failure is harmless

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	pool := nostr.NewPool(cfg.Relays, log)
	defer pool.Close()

	var signer nostr.Signer
	if cfg.HasNostrKey() {
		ls, err := nostr.NewLocalSigner(cfg.Nostr.SecretKey)
		if err != nil {
			return fmt.Errorf("load identity: %w", err)
		}
		signer = ls
	}

	local := player.New()
	defer local.Close()

	var receiver cast.Receiver = cast.Unavailable{}
	if cfg.HasCastConfig() {
		receiver = cast.NewBridge(cfg.Cast.BridgeURL)
	}

	svc := playback.New(local, receiver, log)
	defer svc.Close()

	mprisAdapter, err := mpris.New(svc)
	if err != nil {
		log.Warn("mpris unavailable", zap.Error(err))
	} else {
		defer mprisAdapter.Close()
	}

	if notifier, err := notify.New(); err == nil {
		go notify.NewWatcher(notifier).Run(svc.Subscribe())
	}

	go logPlaybackErrors(svc.Subscribe(), log)

	if signer != nil {
		playlists := playlist.NewService(pool, signer, log)
		go warmPlaylists(playlists, log)

		likes := social.NewLikeService(pool, signer, log)
		defer likes.Close()

		statusPub := status.NewPublisher(pool, signer, log)
		go statusPub.Run(svc.Subscribe())
	} else {
		log.Info("no identity configured, social features disabled")
	}

	if cfg.HasLastfmConfig() {
		session, err := stateMgr.GetLastfmSession()
		if err != nil {
			log.Warn("could not load lastfm session", zap.Error(err))
		} else if session != nil {
			client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
			client.SetSessionKey(session.SessionKey)
			scrobbler := lastfm.NewScrobbler(client, stateMgr, log)
			go scrobbler.Run(svc.Subscribe())
			log.Info("scrobbling enabled", zap.String("user", session.Username))
		}
	}

	restoreSession(svc, stateMgr, log)

	log.Info("zaptrax started",
		zap.Strings("relays", cfg.Relays),
		zap.Bool("casting", cfg.HasCastConfig()),
		zap.Bool("identity", signer != nil))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	saveSession(svc, stateMgr, log)
	return nil
}

// runLastfmLink walks the desktop auth flow: open the authorization
// page in a browser, wait for the callback, store the session.
func runLastfmLink(cfg *config.Config) error {
	if !cfg.HasLastfmConfig() {
		return fmt.Errorf("lastfm api_key and api_secret must be configured first")
	}

	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	token, err := client.GetToken()
	if err != nil {
		return fmt.Errorf("request auth token: %w", err)
	}

	srv, err := lastfm.StartAuthServer()
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer srv.Shutdown()

	authURL := client.GetAuthURL(token)
	fmt.Printf("Authorize ZapTrax at:\n\n  %s\n\n", authURL)
	if err := lastfm.OpenBrowser(authURL); err != nil {
		fmt.Println("Could not open a browser, paste the URL manually.")
	}

	select {
	case <-srv.TokenChan():
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("authorization timed out")
	}

	username, sessionKey, err := client.GetSession(token)
	if err != nil {
		return fmt.Errorf("exchange token: %w", err)
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	if err := stateMgr.SaveLastfmSession(username, sessionKey); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Printf("Linked Last.fm account %q.\n", username)
	return nil
}

// logPlaybackErrors surfaces backend failures as user-facing messages.
func logPlaybackErrors(sub *playback.Subscription, log *zap.Logger) {
	for {
		select {
		case e := <-sub.Error:
			log.Warn(errmsg.Format(playbackOp(e.Operation), e.Err))
		case <-sub.Done:
			return
		}
	}
}

func playbackOp(operation string) errmsg.Op {
	switch operation {
	case "cast":
		return errmsg.OpCastStart
	case "seek":
		return errmsg.OpPlaybackSeek
	default:
		return errmsg.OpPlaybackStart
	}
}

// warmPlaylists fetches the user's playlists once at startup so the
// first interactive request hits warm relay connections.
func warmPlaylists(playlists *playlist.Service, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	lists, err := playlists.List(ctx)
	if err != nil {
		log.Debug("playlist warmup failed", zap.Error(err))
		return
	}
	log.Info("playlists loaded", zap.Int("count", len(lists)))
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("ZAPTRAX_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// restoreSession reinstates the persisted queue and volume without
// starting playback.
func restoreSession(svc playback.Service, stateMgr state.Interface, log *zap.Logger) {
	if volume, _, err := stateMgr.GetVolume(); err == nil {
		if err := svc.SetVolume(volume); err != nil {
			log.Warn("could not restore volume", zap.Error(err))
		}
	}

	qs, err := stateMgr.GetQueue()
	if err != nil {
		log.Warn("could not restore queue", zap.Error(err))
		return
	}
	if len(qs.Tracks) == 0 {
		return
	}
	svc.RestoreQueue(qs.Tracks, qs.CurrentIndex)
	log.Info("queue restored",
		zap.Int("tracks", len(qs.Tracks)),
		zap.Int("index", qs.CurrentIndex))
}

func saveSession(svc playback.Service, stateMgr state.Interface, log *zap.Logger) {
	session := svc.Session()

	if err := stateMgr.SaveQueue(&state.QueueState{
		CurrentIndex: session.Index,
		Tracks:       session.Queue,
	}); err != nil {
		log.Warn("could not save queue", zap.Error(err))
	}
	if err := stateMgr.SaveVolume(session.Volume, false); err != nil {
		log.Warn("could not save volume", zap.Error(err))
	}
}
