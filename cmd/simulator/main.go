package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"powerhub/internal/config"
	"powerhub/internal/mqtt"
	"powerhub/internal/simulator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("SIMULATOR: failed to load config: %v", err)
	}

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID+"-simulator")
	if err != nil {
		log.Fatalf("SIMULATOR: failed to connect to MQTT broker: %v", err)
	}
	defer mqttClient.Disconnect(250)

	sim := simulator.NewSimulator(mqttClient, simulator.DefaultFleet(),
		time.Duration(cfg.Simulator.IntervalSecs)*time.Second)
	go sim.Run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sim.Stop()
}
