package server

import (
	"encoding/json"
	stderrors "errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/netplot/pkg/artifact"
	"github.com/matzehuels/netplot/pkg/buildinfo"
	"github.com/matzehuels/netplot/pkg/cache"
	"github.com/matzehuels/netplot/pkg/errors"
	"github.com/matzehuels/netplot/pkg/network"
	"github.com/matzehuels/netplot/pkg/observability"
	"github.com/matzehuels/netplot/pkg/plot"
	"github.com/matzehuels/netplot/pkg/render"
)

const artifactKeyType = "artifact"

// Response headers set on plot responses.
const (
	HeaderCache       = "X-Netplot-Cache"
	HeaderSynthesized = "X-Netplot-Synthesized"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePlotBody(w http.ResponseWriter, r *http.Request) {
	format := network.FormatJSON
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && (ct == "application/toml" || ct == "text/toml") {
		format = network.FormatTOML
	}
	net, err := network.Read(http.MaxBytesReader(w, r.Body, s.maxBody), format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", s.maxBody))
			return
		}
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "decode network"))
		return
	}
	s.servePlot(w, r, net)
}

func (s *Server) handlePlotExample(w http.ResponseWriter, r *http.Request) {
	s.servePlot(w, r, s.example())
}

type listResponse struct {
	Networks []string `json:"networks"`
}

func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "network store not configured"))
		return
	}
	names, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, listResponse{Networks: names})
}

func (s *Server) handlePlotStored(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "network store not configured"))
		return
	}
	name := chi.URLParam(r, "name")
	net, err := s.store.Get(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := net.Validate(); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "network %q", name))
		return
	}
	s.servePlot(w, r, net)
}

type storeResponse struct {
	RequestID string        `json:"request_id"`
	Artifact  artifact.Info `json:"artifact"`
}

// servePlot renders net according to the query parameters. net is owned by
// the request; shared networks must be cloned by the caller.
func (s *Server) servePlot(w http.ResponseWriter, r *http.Request, net *network.Network) {
	ctx := r.Context()
	logger := s.requestLogger(r)

	p, err := parseParams(r.URL.Query(), s.defaults)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p.store && s.artifacts == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnsupported, "artifact store not configured"))
		return
	}

	var artifactKey string
	if data, err := json.Marshal(net); err == nil {
		artifactKey = s.keyer.ArtifactKey(cache.Hash(data), cache.ArtifactKeyOpts{
			Format: string(p.format),
			Params: p.opts.Params(),
		})
	}

	var (
		canvas      []byte
		cacheState  = "miss"
		synthesized bool
	)
	if artifactKey != "" && !p.opts.Refresh {
		if data, hit, err := s.cache.Get(ctx, artifactKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, artifactKeyType)
			canvas, cacheState = data, "hit"
		} else {
			if err != nil {
				logger.Warn("artifact cache read failed", "err", err)
			}
			observability.Cache().OnCacheMiss(ctx, artifactKeyType)
		}
	}

	if canvas == nil {
		renderer, err := render.New(p.format, p.opts.RendererOptions()...)
		if err != nil {
			writeError(w, r, err)
			return
		}
		plotter := plot.New(renderer,
			plot.WithCache(s.cache),
			plot.WithKeyer(s.keyer),
			plot.WithLogger(logger),
			plot.WithExample(s.example))

		res, err := plotter.Plot(ctx, net, p.opts)
		if err != nil {
			if errors.GetCode(err) == "" && stderrors.Is(err, network.ErrUnknownBus) {
				err = errors.Wrap(errors.ErrCodeInvalidNetwork, err, "plot")
			}
			writeError(w, r, err)
			return
		}
		canvas, synthesized = res.Canvas, res.Synthesized

		if artifactKey != "" {
			if err := s.cache.Set(ctx, artifactKey, canvas, cache.TTLArtifact); err != nil {
				logger.Warn("artifact cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, artifactKeyType, len(canvas))
			}
		}
	}

	w.Header().Set(HeaderCache, cacheState)
	w.Header().Set(HeaderSynthesized, strconv.FormatBool(synthesized))

	if p.store {
		key := artifact.NewKey("plots", p.format.Ext())
		info, err := s.artifacts.Put(ctx, key, canvas, p.format.ContentType())
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.Info("stored plot", "key", info.Key, "bytes", info.Size)
		writeJSON(w, http.StatusCreated, storeResponse{RequestID: requestIDFrom(ctx), Artifact: info})
		return
	}

	w.Header().Set("Content-Type", p.format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(canvas)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(canvas)
}
