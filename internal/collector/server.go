// internal/collector/server.go
package collector

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/d6t-agent/internal/reporter"
)

// maxBody bounds request bodies; a telemetry post is well under 1 KiB.
const maxBody = 64 << 10

// Server exposes the store over HTTP.
type Server struct {
	store *Store
	hub   *Hub // optional live stream
	log   logrus.FieldLogger
}

// NewServer wires the handlers. hub may be nil.
func NewServer(store *Store, hub *Hub, log logrus.FieldLogger) *Server {
	return &Server{store: store, hub: hub, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sensor-data", s.postSensorData).Methods(http.MethodPost)
	api.HandleFunc("/sensor-data", s.listSensorData).Methods(http.MethodGet)
	api.HandleFunc("/sensor-data/{sensorId}/latest", s.listSensor).Methods(http.MethodGet)
	api.HandleFunc("/custom-alert", s.postAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts", s.listAlerts).Methods(http.MethodGet)

	if s.hub != nil {
		r.Handle("/ws", s.hub).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}

// ---- telemetry ----

func (s *Server) postSensorData(w http.ResponseWriter, r *http.Request) {
	var body reporter.SensorData
	if err := decode(w, r, &body); err != nil || body.SensorID == "" || len(body.Temperatures) == 0 {
		writeError(w, http.StatusBadRequest, "invalid sensor data format")
		return
	}

	rd := s.store.AddReading(body.SensorID, body.Temperatures)

	log := s.log.WithFields(logrus.Fields{"sensor": rd.SensorID, "avg": rd.AverageTemperature})
	if rd.IsAbnormal {
		log.Warn("abnormal reading stored")
	} else {
		log.Debug("reading stored")
	}
	s.hub.Publish(EventNewSensorData, rd)

	writeJSON(w, http.StatusCreated, rd)
}

func (s *Server) listSensorData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Readings("", MaxReadings))
}

func (s *Server) listSensor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sensorId"]
	writeJSON(w, http.StatusOK, s.store.Readings(id, MaxSensorReadings))
}

// ---- alerts ----

type alertRequest struct {
	SensorID  string       `json:"sensorId"`
	EventType string       `json:"eventType"`
	Details   alertDetails `json:"details"`
}

type alertResponse struct {
	Message string `json:"message"`
	Alert   Record `json:"alert"`
}

func (s *Server) postAlert(w http.ResponseWriter, r *http.Request) {
	var body alertRequest
	if err := decode(w, r, &body); err != nil || body.SensorID == "" || body.EventType == "" {
		writeError(w, http.StatusBadRequest, "invalid alert data format")
		return
	}

	id := r.Header.Get(reporter.HeaderEventID)
	if id == "" {
		id = uuid.NewString()
	}

	rec, created := s.store.AddAlert(Record{
		EventID:     id,
		SensorID:    body.SensorID,
		Event:       describe(body.EventType, body.Details, s.store.Thresholds()),
		EventType:   body.EventType,
		IsRecovery:  strings.HasSuffix(body.EventType, recoverySuffix),
		Temperature: body.Details.Value,
	})

	if !created {
		writeJSON(w, http.StatusOK, alertResponse{Message: "alert already recorded", Alert: rec})
		return
	}

	s.log.WithFields(logrus.Fields{
		"sensor": rec.SensorID,
		"type":   rec.EventType,
		"event":  rec.EventID,
	}).Info(rec.Event)
	s.hub.Publish(EventAlert, rec)

	writeJSON(w, http.StatusCreated, alertResponse{Message: "alert created", Alert: rec})
}

func (s *Server) listAlerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Alerts())
}

// ---- helpers ----

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
