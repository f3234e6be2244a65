package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
	"github.com/imec-int/monument-plwd-sub000/module/core/geo"
)

type locationMessage struct {
	WatchID   string  `json:"watch_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Default anchor is Gent city centre.
var anchor = domain.Coordinate{Lat: 51.0543, Lng: 3.7174}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	watches := []string{"watch-1", "watch-2", "watch-3"}
	if v := os.Getenv("WATCH_IDS"); v != "" {
		watches = strings.Split(v, ",")
	}

	anchor.Lat = envFloat("ANCHOR_LATITUDE", anchor.Lat)
	anchor.Lng = envFloat("ANCHOR_LONGITUDE", anchor.Lng)

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("carecircle-mock-watch")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("watches: %v around %.5f,%.5f", watches, anchor.Lat, anchor.Lng)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		watchID := watches[rand.Intn(len(watches))]

		// 70% stay within 100m of the anchor, the rest wander up to 2km.
		meters := rand.Float64() * 100
		if rand.Float64() >= 0.7 {
			meters = 200 + rand.Float64()*1800
		}
		pos := geo.Offset(anchor, rand.Float64()*360, meters)

		msg := locationMessage{
			WatchID:   watchID,
			Latitude:  pos.Lat,
			Longitude: pos.Lng,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/carecircle/watch/%s/location", watchID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
