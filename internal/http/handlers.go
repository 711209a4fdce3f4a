package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/transit-messaging/internal/config"
	"github.com/example/transit-messaging/internal/dispatch"
	"github.com/example/transit-messaging/internal/geo"
	"github.com/example/transit-messaging/internal/ingest"
	"github.com/example/transit-messaging/internal/location"
	"github.com/example/transit-messaging/internal/models"
	"github.com/example/transit-messaging/internal/observability"
	"github.com/example/transit-messaging/internal/presence"
	"github.com/example/transit-messaging/internal/router"
	"github.com/example/transit-messaging/internal/storage"
)

type Server struct {
	logger    *slog.Logger
	cfg       config.ServerConfig
	registry  *dispatch.TopicRegistry
	presence  *presence.Resolver
	engine    *router.Service
	directory storage.Directory
	pickups   storage.PickupStore
	locations location.Store
	mux       *mux.Router
	closers   []io.Closer
}

// NewServer wires the engine from config with in-memory fallbacks: no PG_DSN
// means the memory store, no REDIS_ADDR the memory location index, no
// KAFKA_BROKERS no stream producer.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	s := &Server{logger: logger, cfg: cfg, mux: mux.NewRouter()}

	var store interface {
		storage.MessageStore
		storage.PickupStore
		storage.Directory
	}
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, ps)
		store = ps
	} else {
		store = storage.NewMemoryStore()
		logger.Warn("no PG_DSN set, using in-memory store")
	}

	var locs location.Store
	if cfg.RedisAddr != "" {
		rs := location.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
		s.closers = append(s.closers, rs)
		locs = rs
	} else {
		locs = location.NewIndex()
	}

	var producer router.LocationProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp := ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		s.closers = append(s.closers, kp)
		producer = kp
	}

	s.registry = dispatch.NewTopicRegistry()
	s.presence = &presence.Resolver{Directory: store, Logger: logger}
	s.engine = &router.Service{
		Registry:  s.registry,
		Messages:  store,
		Pickups:   store,
		Directory: store,
		Locations: locs,
		Producer:  producer,
		Logger:    logger,
	}
	s.directory = store
	s.pickups = store
	s.locations = locs

	s.registerMiddleware()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/ws/vehicle/{bus_id}", s.handleVehicleWS)
	s.mux.HandleFunc("/ws/chat", s.handleChatWS)
	s.mux.HandleFunc("/api/eta", s.handleETA).Methods("GET")
	s.mux.HandleFunc("/api/driver/{driver_id}/notifications", s.handleNotifications).Methods("GET")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Close shuts down the backing stores and producers.
func (s *Server) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleVehicleWS serves the per-bus tracking feed. Viewers may be
// anonymous; the bus's driver uses the same socket to publish positions.
func (s *Server) handleVehicleWS(w http.ResponseWriter, r *http.Request) {
	busID, err := strconv.ParseInt(mux.Vars(r)["bus_id"], 10, 64)
	if err != nil || busID <= 0 {
		http.Error(w, "bad bus id", http.StatusBadRequest)
		return
	}
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	s.serveWS(w, r, userID, "", busID)
}

// handleChatWS serves the messaging socket. A user id is required; the
// legacy room token and bus scope are optional.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}
	pairToken := r.URL.Query().Get("room")
	busID, _ := strconv.ParseInt(r.URL.Query().Get("bus_id"), 10, 64)
	s.serveWS(w, r, userID, pairToken, busID)
}

// serveWS upgrades, computes the connection's subscriptions, then runs the
// read loop until the peer goes away. Memberships are fully removed before
// the socket is released.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request, userID int64, pairToken string, busID int64) {
	ctx := r.Context()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn := dispatch.NewConn(ws)
	defer conn.Close()
	defer s.registry.UnsubscribeAll(conn)

	observability.ConnectionsActive.Inc()
	defer observability.ConnectionsActive.Dec()

	role, topics := s.presence.Subscriptions(ctx, userID, pairToken, busID)
	for _, tp := range topics {
		if err := s.registry.Subscribe(tp, conn); err != nil {
			s.logger.Warn("subscribe failed", "topic", tp, "error", err)
		}
	}

	sender := models.Identity{UserID: userID, Role: role}
	if userID != 0 {
		if name, err := s.directory.Username(ctx, userID); err == nil {
			sender.Name = name
		}
	}

	s.logger.Info("connection open", "user_id", userID, "bus_id", busID, "role", string(role), "topics", len(topics))

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			break
		}
		var frame models.InboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			observability.MessagesDropped.WithLabelValues("malformed").Inc()
			continue
		}
		if frame.BusID == 0 {
			frame.BusID = busID
		}

		switch frame.Type {
		case "location":
			s.engine.UpdateLocation(ctx, frame.BusID, frame.Lat, frame.Lng)
		case "chat_message":
			if sender.Anonymous() {
				observability.MessagesDropped.WithLabelValues("unresolved").Inc()
				continue
			}
			s.engine.HandleChat(ctx, sender, frame)
		case "pickup_request":
			if sender.Anonymous() {
				observability.MessagesDropped.WithLabelValues("unresolved").Inc()
				continue
			}
			s.engine.HandlePickup(ctx, sender, frame)
		default:
			observability.MessagesDropped.WithLabelValues("unknown_type").Inc()
		}
	}

	s.logger.Info("connection closed", "user_id", userID, "bus_id", busID)
}

// handleETA reports a straight-line arrival estimate from a bus's last
// known position to a named stop, the way the tracking page shows it.
func (s *Server) handleETA(w http.ResponseWriter, r *http.Request) {
	busID, err := strconv.ParseInt(r.URL.Query().Get("bus_id"), 10, 64)
	if err != nil || busID <= 0 {
		http.Error(w, "bad bus id", http.StatusBadRequest)
		return
	}
	stop := r.URL.Query().Get("stop")
	stopLat, stopLng, ok := geo.StopCoords(stop)
	if !ok {
		http.Error(w, "unknown stop", http.StatusNotFound)
		return
	}
	last, ok := s.locations.Last(busID)
	if !ok {
		http.Error(w, "no live location", http.StatusNotFound)
		return
	}
	eta := geo.EstimateMinutes(last.Lat, last.Lng, stopLat, stopLng, s.cfg.AvgSpeedKmh)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"bus_id": busID, "stop": stop, "eta_minutes": eta})
}

// handleNotifications is the polling fallback for drivers whose
// notifications were never delivered live.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	driverID, err := strconv.ParseInt(mux.Vars(r)["driver_id"], 10, 64)
	if err != nil || driverID <= 0 {
		http.Error(w, "bad driver id", http.StatusBadRequest)
		return
	}
	n, err := s.pickups.UnseenCount(r.Context(), driverID)
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"unseen_count": n})
}
