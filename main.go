package main

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/rs/zerolog"

	"linkplayer/internal/config"
	"linkplayer/internal/engine"
	"linkplayer/internal/logging"
	"linkplayer/internal/playback"
	"linkplayer/internal/presence"
	"linkplayer/internal/ui"
)

// loadResource loads a local file into a Fyne resource (returns nil on error).
func loadResource(path string) fyne.Resource {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return fyne.NewStaticResource(filepath.Base(path), b)
}

// newEngine picks the configured backend. VLC falls back to beep when libVLC
// is missing or the binary was built without it.
func newEngine(cfg *config.Config, log zerolog.Logger) engine.Engine {
	beepEngine := func() engine.Engine {
		return engine.NewBeep(engine.BeepOptions{
			PrepareTimeout: cfg.PrepareTimeout(),
			MaxBufferBytes: cfg.MaxBufferBytes(),
			Logger:         logging.Component(log, "beep"),
		})
	}

	if cfg.Backend != config.BackendVLC {
		return beepEngine()
	}
	v, err := engine.NewVLC(logging.Component(log, "vlc"), cfg.PrepareTimeoutMs)
	if err != nil {
		log.Warn().Err(err).Msg("vlc backend unavailable, using beep")
		return beepEngine()
	}
	return v
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.Stderr("info")
		bootLog.Error().Err(err).Msg("invalid config, using defaults")
		cfg = config.Default()
	}
	log := logging.Stderr(cfg.LogLevel)
	log.Info().Str("backend", cfg.Backend).Msg("starting")

	a := app.NewWithID("dev.linkplayer")
	w := a.NewWindow("LinkPlayer")
	w.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))

	if res := loadResource("icon.png"); res != nil {
		a.SetIcon(res)
		w.SetIcon(res)
	}

	if cfg.Theme == "dark" {
		a.Settings().SetTheme(theme.DarkTheme())
	} else {
		a.Settings().SetTheme(theme.LightTheme())
	}

	eng := newEngine(cfg, log)

	var pres playback.Presence
	if cfg.Discord.Enabled {
		dc := presence.New(cfg.Discord.ClientID, logging.Component(log, "discord"))
		if err := dc.Connect(); err != nil {
			// Non-fatal: the client retries on the next update
			log.Warn().Err(err).Msg("discord connect failed")
		}
		defer dc.Disconnect()
		pres = dc
	}

	screen := ui.NewScreen(w)
	ctrl := playback.New(playback.Options{
		Engine:       eng,
		View:         screen,
		Scheduler:    playback.NewTimerScheduler(fyne.Do),
		Dispatch:     fyne.Do,
		Logger:       logging.Component(log, "playback"),
		PollInterval: cfg.PollInterval(),
		Presence:     pres,
	})
	screen.Bind(ctrl)

	w.SetContent(screen.Content())
	w.SetOnClosed(func() {
		ctrl.Destroy()
		eng.Close()
	})

	w.ShowAndRun()
}
