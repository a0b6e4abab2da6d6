package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/tagmarks/tagmarks-server/internal/api"
	"github.com/tagmarks/tagmarks-server/internal/config"
	"github.com/tagmarks/tagmarks-server/internal/logger"
	"github.com/tagmarks/tagmarks-server/internal/service"
)

// Version is reported in the OpenAPI document. Set at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with shutdown capability.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
	log *logger.Logger
}

// Serve accepts connections until the server is shut down. It returns nil
// after a graceful shutdown.
func (h *HTTPServerHandle) Serve(ln net.Listener) error {
	h.log.Info("HTTP server starting", "addr", ln.Addr().String())
	if err := h.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (h *HTTPServerHandle) Shutdown(ctx context.Context) error {
	defer h.api.Close()
	h.log.Info("HTTP server stopping")
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server. It is not listening yet; the
// caller opens the listener and calls Serve.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Invoked so the container shuts the queue down after the server.
	_ = do.MustInvoke[*EnrichmentQueueHandle](i)

	services := &api.Services{
		Users:       do.MustInvoke[*service.UserService](i),
		Bookmarks:   do.MustInvoke[*service.BookmarkService](i),
		Tags:        do.MustInvoke[*service.TagService](i),
		Directories: do.MustInvoke[*service.DirectoryService](i),
		Search:      do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		Version:           Version,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &HTTPServerHandle{Server: srv, api: handler, log: log}, nil
}
