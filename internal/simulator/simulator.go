package simulator

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"powerhub/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	costPerKWh = 0.12

	// Chance per tick that a device flips between on and off.
	statusFlipChance = 0.05

	usageVariation = 0.20
	idleFraction   = 0.10
	wifiWalkStep   = 10
)

// baseUsage is the nominal draw in watts for each device type when on.
var baseUsage = map[string]float64{
	"light":  15,
	"fan":    75,
	"plug":   50,
	"ac":     1500,
	"heater": 1200,
}

const defaultBaseUsage = 25

// SimDevice is one simulated device being walked through states.
type SimDevice struct {
	ID    string
	Type  string
	State models.DeviceState
}

// Simulator publishes synthetic telemetry for a fixed fleet of devices,
// random-walking each one's usage and wifi strength.
type Simulator struct {
	mqttClient mqtt.Client
	devices    []SimDevice
	interval   time.Duration
	rng        *rand.Rand
	stop       chan struct{}
	done       chan struct{}
}

// NewSimulator creates a simulator for the given devices
func NewSimulator(mqttClient mqtt.Client, devices []SimDevice, interval time.Duration) *Simulator {
	return &Simulator{
		mqttClient: mqttClient,
		devices:    devices,
		interval:   interval,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// DefaultFleet returns the demo device fleet
func DefaultFleet() []SimDevice {
	fleet := []SimDevice{
		{ID: "light-living", Type: "light"},
		{ID: "light-bedroom", Type: "light"},
		{ID: "fan-bedroom", Type: "fan"},
		{ID: "plug-kitchen", Type: "plug"},
		{ID: "ac-living", Type: "ac"},
		{ID: "heater-bathroom", Type: "heater"},
	}
	for i := range fleet {
		fleet[i].State = models.DeviceState{
			Status:       models.StatusOn,
			WifiStrength: 60,
		}
	}
	return fleet
}

// Run publishes until Stop is called
func (s *Simulator) Run() {
	log.Printf("SIMULATOR: publishing %d devices every %s", len(s.devices), s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for i := range s.devices {
				s.devices[i].State = s.Step(s.devices[i])
				s.publish(s.devices[i])
			}
		}
	}
}

// Stop halts the simulator and waits for the publish loop to exit
func (s *Simulator) Stop() {
	close(s.stop)
	<-s.done
	log.Println("SIMULATOR: stopped")
}

// Step advances one device's state by a single tick.
func (s *Simulator) Step(dev SimDevice) models.DeviceState {
	st := dev.State

	if s.rng.Float64() < statusFlipChance {
		if st.Status == models.StatusOn {
			st.Status = models.StatusOff
		} else {
			st.Status = models.StatusOn
		}
	}

	base, ok := baseUsage[dev.Type]
	if !ok {
		base = defaultBaseUsage
	}
	if st.Status != models.StatusOn {
		base *= idleFraction
	}
	variation := 1 + (s.rng.Float64()*2-1)*usageVariation
	st.PowerUsage = base * variation

	st.WifiStrength += s.rng.Intn(2*wifiWalkStep+1) - wifiWalkStep
	if st.WifiStrength < 0 {
		st.WifiStrength = 0
	}
	if st.WifiStrength > 100 {
		st.WifiStrength = 100
	}

	st.EstimatedCost = EstimateDailyCost(st.PowerUsage)
	st.UpdatedAt = time.Now()
	return st
}

// EstimateDailyCost projects a wattage to a cost per day at the flat tariff.
func EstimateDailyCost(watts float64) float64 {
	return watts / 1000 * costPerKWh * 24
}

func (s *Simulator) publish(dev SimDevice) {
	payload, err := json.Marshal(dev.State)
	if err != nil {
		log.Printf("SIMULATOR: failed to marshal state for %s: %v", dev.ID, err)
		return
	}
	topic := fmt.Sprintf("devices/%s/state", dev.ID)
	if token := s.mqttClient.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("SIMULATOR: failed to publish state for %s: %v", dev.ID, token.Error())
	}
}
