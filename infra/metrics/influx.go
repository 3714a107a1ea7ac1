package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/infra/logger"
)

// InfluxSink writes round data to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func addKits(p *write.Point, prefix string, k model.Kits) *write.Point {
	for _, c := range model.Classes {
		p = p.AddField(prefix+c.Key(), k.Get(c))
	}
	return p
}

// RecordRound writes one "round" point per played hour.
func (s *InfluxSink) RecordRound(rec coremetrics.RoundRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("round").
		AddTag("component", "orchestrator").
		AddField("day", rec.At.Day).
		AddField("hour", rec.At.Hour).
		AddField("flights", rec.Flights).
		AddField("landed", rec.Landed).
		AddField("penalties", rec.Penalties).
		AddField("penalty_amount", round3(rec.PenaltyAmount)).
		AddField("total_cost", round3(rec.TotalCost))
	p = addKits(p, "loaded_", rec.Loaded)
	p = addKits(p, "purchased_", rec.Purchased)
	return s.writeAPI.WritePoint(ctx, p.SetTime(s.now()))
}

// RecordPenalty writes a penalty point tagged with its code.
func (s *InfluxSink) RecordPenalty(rec coremetrics.PenaltyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("penalty").
		AddTag("code", rec.Code)
	if rec.FlightNumber != "" {
		p = p.AddTag("flight_number", rec.FlightNumber)
	}
	p = p.AddField("amount", round3(rec.Amount)).
		AddField("day", rec.At.Day).
		AddField("hour", rec.At.Hour).
		SetTime(s.now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStock writes one point per airport.
func (s *InfluxSink) RecordStock(at model.Hour, stock map[string]model.Kits) error {
	if len(stock) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts := s.now()
	points := make([]*write.Point, 0, len(stock))
	for ap, k := range stock {
		p := write.NewPointWithMeasurement("airport_stock").
			AddTag("airport", ap).
			AddField("day", at.Day).
			AddField("hour", at.Hour)
		points = append(points, addKits(p, "", k).SetTime(ts))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordStrategy writes allocator strategy transitions.
func (s *InfluxSink) RecordStrategy(rec coremetrics.StrategyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_strategy").
		AddTag("origin", rec.Origin).
		AddTag("action", rec.Action).
		AddField("index", rec.At.Index()).
		SetTime(s.now())
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
