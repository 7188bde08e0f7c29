package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"powerhub/internal/db"
	"powerhub/internal/models"
	"powerhub/internal/taskqueue"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
)

const (
	// StateTopic is the wildcard subscription for device state reports.
	StateTopic = "devices/+/state"

	// LiveChannel is the Redis pubsub channel carrying accepted updates
	// for websocket fanout.
	LiveChannel = "device.updates"

	streamMaxLen   = 100
	debounceWindow = 2000 * time.Millisecond

	// Thresholds below which an update is not worth propagating.
	minWattsDelta = 1.0
	minWifiDelta  = 5
)

// Ingestor consumes raw device state from MQTT, debounces it through a
// Redis stream per device, and propagates significant changes to the
// live cache, the history queue and the pubsub fanout.
type Ingestor struct {
	mqttClient  mqtt.Client
	redisClient *redis.Client
	db          *db.DB
	queue       *taskqueue.Queue
	stop        chan struct{}
}

// NewIngestor creates an ingestor; Start must be called to begin processing
func NewIngestor(mqttClient mqtt.Client, redisClient *redis.Client, database *db.DB, queue *taskqueue.Queue) *Ingestor {
	return &Ingestor{
		mqttClient:  mqttClient,
		redisClient: redisClient,
		db:          database,
		queue:       queue,
		stop:        make(chan struct{}),
	}
}

// Start subscribes to device state topics and begins stream processing
func (in *Ingestor) Start() error {
	log.Printf("TELEMETRY: subscribing to MQTT topic %s", StateTopic)
	if token := in.mqttClient.Subscribe(StateTopic, 1, in.onDeviceUpdate); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	go in.processStreams()
	log.Println("TELEMETRY: ingestor started")
	return nil
}

// Stop halts stream processing
func (in *Ingestor) Stop() {
	close(in.stop)
	in.mqttClient.Unsubscribe(StateTopic)
	log.Println("TELEMETRY: ingestor stopped")
}

// ParseDeviceID extracts the device id from a devices/<id>/state topic
func ParseDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// onDeviceUpdate buffers a raw MQTT state report into the device's stream
func (in *Ingestor) onDeviceUpdate(client mqtt.Client, msg mqtt.Message) {
	deviceID := ParseDeviceID(msg.Topic())
	if deviceID == "" {
		log.Printf("TELEMETRY: ignoring state on malformed topic %s", msg.Topic())
		return
	}
	var st models.DeviceState
	if err := json.Unmarshal(msg.Payload(), &st); err != nil {
		log.Printf("TELEMETRY: bad state payload for %s: %v", deviceID, err)
		return
	}

	streamKey := fmt.Sprintf("stream:device:%s", deviceID)
	err := in.redisClient.XAdd(context.Background(), &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: streamMaxLen,
		Values: map[string]interface{}{
			"state":     string(msg.Payload()),
			"timestamp": time.Now().UnixNano(),
		},
	}).Err()
	if err != nil {
		log.Printf("TELEMETRY: failed to buffer update for %s: %v", deviceID, err)
	}
}

// processStreams drains the per-device streams, keeping only the latest
// buffered state per debounce window.
func (in *Ingestor) processStreams() {
	for {
		select {
		case <-in.stop:
			return
		default:
		}

		keys, err := in.redisClient.Keys(context.Background(), "stream:device:*").Result()
		if err != nil {
			log.Printf("TELEMETRY: failed to list streams: %v", err)
			time.Sleep(debounceWindow)
			continue
		}
		if len(keys) == 0 {
			time.Sleep(debounceWindow)
			continue
		}

		ids := make([]string, len(keys))
		for i, key := range keys {
			lastID, err := in.redisClient.Get(context.Background(), "last_read:"+key).Result()
			if err != nil {
				lastID = "0-0"
			}
			ids[i] = lastID
		}

		streams, err := in.redisClient.XRead(context.Background(), &redis.XReadArgs{
			Streams: append(keys, ids...),
			Block:   debounceWindow,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Printf("TELEMETRY: failed to read streams: %v", err)
			continue
		}

		for _, stream := range streams {
			if len(stream.Messages) == 0 {
				continue
			}
			deviceID := strings.TrimPrefix(stream.Stream, "stream:device:")
			latest := stream.Messages[len(stream.Messages)-1]
			raw, _ := latest.Values["state"].(string)
			var st models.DeviceState
			if err := json.Unmarshal([]byte(raw), &st); err != nil {
				log.Printf("TELEMETRY: bad buffered state for %s: %v", deviceID, err)
				continue
			}
			in.processBufferedUpdate(deviceID, st, json.RawMessage(raw))
			in.redisClient.Set(context.Background(), "last_read:"+stream.Stream, latest.ID, 0)
		}
	}
}

// processBufferedUpdate applies one debounced state update
func (in *Ingestor) processBufferedUpdate(deviceID string, st models.DeviceState, raw json.RawMessage) {
	lastRaw, _ := in.redisClient.Get(context.Background(), fmt.Sprintf("device:%s", deviceID)).Result()
	var last models.DeviceState
	if lastRaw != "" {
		json.Unmarshal([]byte(lastRaw), &last)
	}

	if lastRaw != "" && !SignificantChange(last, st) {
		return
	}

	st.UpdatedAt = time.Now()
	stored, _ := json.Marshal(st)
	in.redisClient.Set(context.Background(), fmt.Sprintf("device:%s", deviceID), stored, time.Hour)

	live, _ := json.Marshal(struct {
		DeviceID string             `json:"device_id"`
		State    models.DeviceState `json:"state"`
	}{DeviceID: deviceID, State: st})
	in.redisClient.Publish(context.Background(), LiveChannel, live)

	if err := in.queue.EnqueueDeviceUpdate(deviceID, raw); err != nil {
		log.Printf("TELEMETRY: failed to enqueue history for %s: %v", deviceID, err)
	}

	go func() {
		if err := in.db.UpdateDeviceLiveState(context.Background(), deviceID, st); err != nil {
			log.Printf("TELEMETRY: failed to persist state for %s: %v", deviceID, err)
		}
	}()
}

// SignificantChange reports whether a new state differs enough from the
// last propagated one to be worth fanning out.
func SignificantChange(last, next models.DeviceState) bool {
	if last.Status != next.Status {
		return true
	}
	if math.Abs(last.PowerUsage-next.PowerUsage) >= minWattsDelta {
		return true
	}
	if abs(last.WifiStrength-next.WifiStrength) >= minWifiDelta {
		return true
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
