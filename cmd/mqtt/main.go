package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/sirupsen/logrus"
)

// Standalone plant bus broker. Logs supervisor traffic so a site without a
// dashboard can still watch the boiler.
func main() {
	server := mqtt.New(&mqtt.Options{
		InlineClient: true,
	})
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Allow all connections.
	_ = server.AddHook(new(auth.AllowHook), nil)

	tcp := listeners.NewTCP(listeners.Config{ID: "t1", Address: ":1883"})
	err := server.AddListener(tcp)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		err := server.Serve()
		if err != nil {
			log.Fatal(err)
		}
	}()

	go func() {
		err := server.Subscribe("boiler/supervisor/#", 1, func(cl *mqtt.Client, sub packets.Subscription, pk packets.Packet) {
			server.Log.Info("supervisor", "topic", pk.TopicName, "payload", string(pk.Payload))
		})
		if err != nil {
			logrus.Error(err)
			return
		}
	}()

	<-ctx.Done()
	server.Close()
}
