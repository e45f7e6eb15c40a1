package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"flipfetch/internal/book"
	"flipfetch/internal/config"
	"flipfetch/internal/destring"
	"flipfetch/internal/destring/artifactcache"
	"flipfetch/internal/destring/wasmhost"
)

// newDecodeService wires the manifest decoder per config. The returned
// cleanup releases the in-process binary runtime when one was created.
func newDecodeService(cfg *config.Config, logger *slog.Logger) (*destring.Service, func(), error) {
	timeout := time.Duration(cfg.Decoder.TimeoutSeconds) * time.Second
	cache := artifactcache.New(cfg.Paths.CacheDir, &http.Client{Timeout: 30 * time.Second}, logger)

	var (
		run     destring.RunFunc
		cleanup = func() {}
	)
	if cfg.Decoder.InProcess {
		runtime, err := wasmhost.New(context.Background(), logger)
		if err != nil {
			return nil, nil, err
		}
		runner := &destring.InProcessRunner{Runtime: runtime, Timeout: timeout, Logger: logger}
		run = runner.Run
		cleanup = func() { _ = runtime.Close(context.Background()) }
	} else {
		run = destring.NewSubprocessRunner(cfg.Decoder.HelperPath, timeout, logger).Run
	}

	return destring.NewService(cache, cfg.Decoder.ArtifactURL, run, logger), cleanup, nil
}

// newBookLoader wires the reader client and loader.
func newBookLoader(cfg *config.Config, decoder book.ManifestDecoder, logger *slog.Logger) *book.Loader {
	client := book.NewClient(
		time.Duration(cfg.Download.RequestTimeout)*time.Second,
		cfg.Download.UserAgent,
		logger,
	)
	return book.NewLoader(client, decoder, logger)
}
