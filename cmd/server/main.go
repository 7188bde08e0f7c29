package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"powerhub/internal/bridge"
	"powerhub/internal/config"
	"powerhub/internal/db"
	"powerhub/internal/devices"
	"powerhub/internal/mqtt"
	"powerhub/internal/redis"
	"powerhub/internal/rules"
	"powerhub/internal/scheduler"
	"powerhub/internal/taskqueue"
	"powerhub/internal/telemetry"
	"powerhub/internal/web"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.NewDB(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	redisClient := redis.NewRedisClient(cfg.Redis.Addr)

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		log.Fatalf("Failed to connect to MQTT: %v", err)
	}

	queue := taskqueue.NewQueue(cfg.Redis.Addr)
	defer queue.Close()

	worker := taskqueue.NewWorker(cfg.Redis.Addr, database)
	go worker.Run()

	store := rules.NewStore(db.NewRuleRepo(database), queue)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}
	cancel()
	log.Printf("RULES: loaded %d rules", store.Len())

	ingestor := telemetry.NewIngestor(mqttClient, redisClient, database, queue)
	if err := ingestor.Start(); err != nil {
		log.Fatalf("Failed to start telemetry ingest: %v", err)
	}

	sched := scheduler.NewScheduler(store, database)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	directory := devices.NewDirectory(database, redisClient)
	webServer := web.NewWebServer(database, redisClient, store, directory, cfg.JWT.Secret, cfg.App.AgentID)
	go func() {
		if err := webServer.Start(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			log.Fatalf("Web server stopped: %v", err)
		}
	}()

	go startMDNSServer(cfg.MDNS.LocalName)

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	if cfg.RemoteAccess.Enabled {
		agent := bridge.NewAgent(bridge.Config{
			PublicWS:   cfg.RemoteAccess.PublicWS,
			LocalURL:   fmt.Sprintf("http://127.0.0.1:%d", cfg.App.Port),
			AgentID:    cfg.App.AgentID,
			RetryDelay: time.Duration(cfg.RemoteAccess.RetryDelaySecs) * time.Second,
		})
		go agent.Run(bridgeCtx)
	} else {
		log.Println("BRIDGE: remote access disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	stopBridge()
	ingestor.Stop()
	sched.Stop()
	worker.Stop()
	log.Println("Shutdown complete")
}

func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("MDNS: failed to resolve UDP4 address:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("MDNS: failed to resolve UDP6 address:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("MDNS: failed to listen on UDP4:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("MDNS: failed to listen on UDP6:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("MDNS: failed to start server:", err)
		return
	}
	log.Printf("MDNS: announcing %s", localName)
}
