package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/PeymanShobeiri/Distributed-System-Design/audit"
	"github.com/PeymanShobeiri/Distributed-System-Design/config"
	"github.com/PeymanShobeiri/Distributed-System-Design/infra/kafka"
	"github.com/PeymanShobeiri/Distributed-System-Design/infra/udp"
	"github.com/PeymanShobeiri/Distributed-System-Design/jobs/auditor"
	"github.com/PeymanShobeiri/Distributed-System-Design/service"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to JSON config (defaults apply when empty)")
		partition  = flag.String("node", "all", "partition key to run (NYK, LON, TOK) or 'all'")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------------- Audit sinks ----------------

	sinks := []audit.Sink{audit.NewConsoleSink(logger)}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		sinks = append(sinks, auditor.NewKafkaSink(producer))
	}

	// ---------------- Nodes ----------------

	channel := udp.NewChannel(cfg.Peers(), cfg.ReplyTimeout())

	var listeners []*udp.Listener
	for _, nc := range cfg.Nodes {
		if *partition != "all" && *partition != nc.Partition {
			continue
		}

		spool := audit.NewSpool(nc.Partition, cfg.SpoolSize)
		auditor.New(spool, sinks...).Start(ctx)

		node, err := service.NewNode(nc.Partition, channel, spool)
		if err != nil {
			log.Fatalf("node %s: %v", nc.Partition, err)
		}

		lis, err := udp.Listen(nc.Addr(), node, logger.Named(nc.Partition))
		if err != nil {
			log.Fatalf("listen %s: %v", nc.Addr(), err)
		}
		go lis.Serve()
		listeners = append(listeners, lis)

		logger.Info("market node up",
			zap.String("partition", nc.Partition),
			zap.String("name", node.Name()),
			zap.String("addr", nc.Addr()),
		)
	}
	if len(listeners) == 0 {
		log.Fatalf("no node matches -node=%s", *partition)
	}

	// ---------------- Shutdown ----------------

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	for _, lis := range listeners {
		_ = lis.Close()
	}
	logger.Info("market nodes stopped")
}
