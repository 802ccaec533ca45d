package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniInventory/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 1 * time.Second

	msgItemNotFound = "Item not found"
	msgMissingKeys  = "Missing required keys"
	msgIDImmutable  = "Cannot update 'id' field"
	msgInvalidJSON  = "Invalid JSON body"
	msgItemDeleted  = "Item deleted"
	msgAlive        = "Hello, World! Service is working."
)

var errNotObject = errors.New("body must be a JSON object")

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *Metrics

	// WriteLimiter, when set, guards POST/PUT/DELETE.
	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// "healtz" is the published liveness path; clients depend on the spelling.
	r.Get("/healtz", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteMessage(w, http.StatusOK, msgAlive)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Route("/inventory", func(rr chi.Router) {
		rr.Get("/", s.list)
		rr.Get("/{id}", s.get)

		rr.Group(func(wr chi.Router) {
			if s.WriteLimiter != nil {
				wr.Use(s.WriteLimiter.Middleware)
			}
			wr.Post("/", s.create)
			wr.Put("/{id}", s.update)
			wr.Delete("/{id}", s.delete)
		})
	})

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.log().Info("list items")

	items, err := s.Store.List(r.Context())
	if err != nil {
		s.writeStoreError(w, r, opList, 0, err)
		return
	}

	s.Metrics.observe(opList, resultOK)
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, opGet)
	if !ok {
		return
	}
	s.log().Info("get item", zap.Int64("id", id))

	it, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, opGet, id, err)
		return
	}

	s.Metrics.observe(opGet, resultOK)
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.log().Info("create item")

	fields, err := decodeItem(w, r)
	if err != nil {
		s.writeDecodeError(w, r, opCreate, err)
		return
	}

	it, err := s.Store.Create(r.Context(), fields)
	if err != nil {
		s.writeStoreError(w, r, opCreate, 0, err)
		return
	}

	id, _ := it.ID()
	s.log().Info("item created", zap.Int64("id", id))
	s.Metrics.observe(opCreate, resultOK)
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, opUpdate)
	if !ok {
		return
	}

	fields, err := decodeItem(w, r)
	if err != nil {
		s.writeDecodeError(w, r, opUpdate, err)
		return
	}

	it, err := s.Store.Update(r.Context(), id, fields)
	if err != nil {
		s.writeStoreError(w, r, opUpdate, id, err)
		return
	}

	s.log().Info("item updated", zap.Int64("id", id))
	s.Metrics.observe(opUpdate, resultOK)
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, opDelete)
	if !ok {
		return
	}

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, opDelete, id, err)
		return
	}

	s.log().Info("item deleted", zap.Int64("id", id))
	s.Metrics.observe(opDelete, resultOK)
	kit.WriteMessage(w, http.StatusOK, msgItemDeleted)
}

// pathID treats anything but a plain run of ASCII digits as an unknown item.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := parseDigits(raw)
	if err != nil {
		s.log().Warn("item not found", zap.String("op", op), zap.String("id", raw))
		s.Metrics.observe(op, resultNotFound)
		kit.WriteError(w, r, http.StatusNotFound, msgItemNotFound, nil)
		return 0, false
	}
	return id, true
}

func parseDigits(raw string) (int64, error) {
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, op string, id int64, err error) {
	log := s.log().With(zap.String("op", op), zap.Int64("id", id))

	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("item not found")
		s.Metrics.observe(op, resultNotFound)
		kit.WriteError(w, r, http.StatusNotFound, msgItemNotFound, nil)
	case errors.Is(err, ErrMissingKeys):
		log.Error("rejected item", zap.Error(err))
		s.Metrics.observe(op, resultValidation)
		kit.WriteError(w, r, http.StatusBadRequest, msgMissingKeys, nil)
	case errors.Is(err, ErrIDImmutable):
		log.Warn("rejected item", zap.Error(err))
		s.Metrics.observe(op, resultValidation)
		kit.WriteError(w, r, http.StatusBadRequest, msgIDImmutable, nil)
	default:
		log.Error("store failed", zap.Error(err))
		s.Metrics.observe(op, resultError)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) writeDecodeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.log().Warn("bad request body", zap.String("op", op), zap.Error(err))
	s.Metrics.observe(op, resultValidation)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, "request body too large",
			map[string]any{"max_bytes": tooLarge.Limit})
		return
	}
	kit.WriteError(w, r, http.StatusBadRequest, msgInvalidJSON, map[string]any{"cause": err.Error()})
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// decodeItem reads exactly one JSON object, keeping numbers as json.Number so
// they are echoed back unchanged.
func decodeItem(w http.ResponseWriter, r *http.Request) (Item, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var it Item
	if err := dec.Decode(&it); err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errNotObject
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("extra data after json object")
	}
	return it, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	kit.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
}
