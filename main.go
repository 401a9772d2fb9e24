package main

import (
	"encoding/base64"
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fib-lab/microtraffic/clock"
	mconfig "github.com/fib-lab/microtraffic/internal/config"
	"github.com/fib-lab/microtraffic/internal/wsstream"
	"github.com/fib-lab/microtraffic/sim"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var (
	// 监听地址
	listenAddr = flag.String("listen", ":51102", "HTTP/websocket listening address")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "log level (one of: trace debug info warn error critical off)")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	var doc mconfig.Document
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &doc); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	rc, err := mconfig.NewRuntimeConfig(doc)
	if err != nil {
		log.Panicf("config resolve err: %v", err)
	}
	log.Infof("%+v", rc.SimConfig)

	model := sim.New(rc.RoadLen, doc.Seed, clock.SystemClock{})
	cfg := &guardedConfig{c: rc.SimConfig}

	hub := wsstream.NewHub(
		func() { model.TriggerAccident() },
		func(p wsstream.Patch) { cfg.apply(p) },
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeHTTP)
	go func() {
		log.Infof("listening on %s", *listenAddr)
		if err := http.ListenAndServe(*listenAddr, mux); err != nil {
			log.Panicf("http server err: %v", err)
		}
	}()

	runLoop(model, cfg, hub)
}

// guardedConfig serializes the run loop's reads against the
// websocket-driven config patches from hub's control-message handler -
// the same kind of single targeted mutex sim.Model uses for its
// wall-clock incident callback, not a general concurrency guarantee.
type guardedConfig struct {
	mu sync.Mutex
	c  sim.Config
}

func (g *guardedConfig) snapshot() sim.Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.c
}

func (g *guardedConfig) apply(p wsstream.Patch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.InflowRate != nil {
		g.c.InflowRate = *p.InflowRate
	}
	if p.TimeScale != nil {
		g.c.TimeScale = *p.TimeScale
	}
	if p.TruckRatio != nil {
		g.c.TruckRatio = *p.TruckRatio
	}
	if p.IsPaused != nil {
		g.c.IsPaused = *p.IsPaused
	}
	if p.Politeness != nil {
		g.c.Politeness = *p.Politeness
	}
	if p.SafeTimeGap != nil {
		g.c.SafeTimeGap = *p.SafeTimeGap
	}
	if p.MaxAccel != nil {
		g.c.MaxAccel = *p.MaxAccel
	}
	if p.AccelerationNoise != nil {
		g.c.AccelerationNoise = *p.AccelerationNoise
	}
}

// runLoop drives the simulation at the fixed wall-clock rate implied
// by baseDT (spec §9: the host schedules Step, the core doesn't
// schedule itself), broadcasting a snapshot to every connected viewer
// after each step unless the host has paused the simulation.
func runLoop(model *sim.Model, cfg *guardedConfig, hub *wsstream.Hub) {
	const tick = time.Second / 60
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for range ticker.C {
		c := cfg.snapshot()
		if c.IsPaused {
			continue
		}
		model.Step(c)
		hub.Broadcast(snapshot{
			Vehicles: model.Vehicles(),
			Stats:    model.GetStats(),
			Incident: model.CurrentIncident(),
		})
	}
}

type snapshot struct {
	Vehicles []sim.VehicleView `json:"vehicles"`
	Stats    sim.Stats         `json:"stats"`
	Incident *sim.Incident     `json:"incident,omitempty"`
}
