// Command alarm-panel runs a keypad-armed security controller on a
// Raspberry Pi: two PIR detectors, a door contact and an ultrasonic
// ranger feed a small state machine that drives the display, buzzer and
// status LED, appends to an on-disk event log and publishes panel
// events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/alarm-panel/internal/config"
	"github.com/sweeney/alarm-panel/internal/display"
	"github.com/sweeney/alarm-panel/internal/eventlog"
	"github.com/sweeney/alarm-panel/internal/keypad"
	"github.com/sweeney/alarm-panel/internal/led"
	"github.com/sweeney/alarm-panel/internal/log"
	"github.com/sweeney/alarm-panel/internal/mqtt"
	"github.com/sweeney/alarm-panel/internal/panel"
	"github.com/sweeney/alarm-panel/internal/sensor"
	"github.com/sweeney/alarm-panel/internal/status"
	"github.com/sweeney/alarm-panel/internal/tone"
	"github.com/sweeney/alarm-panel/internal/web"
)

// Default BCM pin assignments for the single-line peripherals.
const (
	defaultPinPIROuter = 17
	defaultPinPIRInner = 27
	defaultPinDoor     = 22
	defaultPinTrig     = 23
	defaultPinEcho     = 24
	defaultPinBuzzer   = 18
	defaultPinLEDRed   = 25
	defaultPinLEDGreen = 8
	defaultPinLEDBlue  = 7
)

type options struct {
	tick       time.Duration
	code       string
	entryDelay time.Duration
	broker     string
	panelID    string
	heartbeat  time.Duration
	httpAddr   string
	wsBroker   string
	logPath    string
	chip       string

	pinPIROuter int
	pinPIRInner int
	pinDoor     int
	pinTrig     int
	pinEcho     int
	pinBuzzer   int
	pinLEDRed   int
	pinLEDGreen int
	pinLEDBlue  int

	printState bool
	fake       bool
}

func main() {
	var opts options
	flag.DurationVar(&opts.tick, "tick", config.Duration("ALARM_TICK", 50*time.Millisecond), "control loop interval")
	flag.StringVar(&opts.code, "code", config.String("ALARM_CODE", "2580"), "four digit arm/disarm code (env ALARM_CODE)")
	flag.DurationVar(&opts.entryDelay, "entry-delay", config.Duration("ALARM_ENTRY_DELAY", panel.DefaultEntryDelay), "grace period after a door open while armed away")
	flag.StringVar(&opts.broker, "broker", config.String("ALARM_BROKER", "tcp://192.168.1.200:1883"), "MQTT broker address")
	flag.StringVar(&opts.panelID, "panel", config.String("ALARM_PANEL_ID", "front-door"), "panel identifier used in MQTT topics")
	flag.DurationVar(&opts.heartbeat, "heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")
	flag.StringVar(&opts.httpAddr, "http", config.String("ALARM_HTTP", ":8080"), "HTTP status address (empty to disable)")
	flag.StringVar(&opts.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for the live UI ("=broker" derives from --broker, "off" disables)`)
	flag.StringVar(&opts.logPath, "log-file", config.String("ALARM_LOG_FILE", "/var/log/alarm-panel/events.log"), "append-only event log path")
	flag.StringVar(&opts.chip, "chip", config.String("ALARM_CHIP", "gpiochip0"), "GPIO character device name")
	flag.IntVar(&opts.pinPIROuter, "pin-pir-outer", config.Int("ALARM_PIN_PIR_OUTER", defaultPinPIROuter), "BCM pin for the outer PIR detector")
	flag.IntVar(&opts.pinPIRInner, "pin-pir-inner", config.Int("ALARM_PIN_PIR_INNER", defaultPinPIRInner), "BCM pin for the inner PIR detector")
	flag.IntVar(&opts.pinDoor, "pin-door", config.Int("ALARM_PIN_DOOR", defaultPinDoor), "BCM pin for the door contact")
	flag.IntVar(&opts.pinTrig, "pin-trig", config.Int("ALARM_PIN_TRIG", defaultPinTrig), "BCM pin for the ultrasonic trigger")
	flag.IntVar(&opts.pinEcho, "pin-echo", config.Int("ALARM_PIN_ECHO", defaultPinEcho), "BCM pin for the ultrasonic echo")
	flag.IntVar(&opts.pinBuzzer, "pin-buzzer", config.Int("ALARM_PIN_BUZZER", defaultPinBuzzer), "BCM pin for the piezo buzzer")
	flag.IntVar(&opts.pinLEDRed, "pin-led-r", config.Int("ALARM_PIN_LED_R", defaultPinLEDRed), "BCM pin for the red LED leg")
	flag.IntVar(&opts.pinLEDGreen, "pin-led-g", config.Int("ALARM_PIN_LED_G", defaultPinLEDGreen), "BCM pin for the green LED leg")
	flag.IntVar(&opts.pinLEDBlue, "pin-led-b", config.Int("ALARM_PIN_LED_B", defaultPinLEDBlue), "BCM pin for the blue LED leg")
	flag.BoolVar(&opts.printState, "print-state", false, "print the current detector state and exit")
	flag.BoolVar(&opts.fake, "fake", false, "run against fake hardware (development off the Pi)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	log.Configure(log.Config{Level: *logLevel})

	opts.wsBroker = resolveWSBroker(opts.wsBroker, opts.broker)

	if err := run(opts); err != nil {
		base := log.Base()
		base.Fatal().Err(err).Msg("fatal")
	}
}

func run(opts options) error {
	logger := log.WithComponent("main")

	if !config.ValidCode(opts.code) {
		return fmt.Errorf("invalid code %q: want exactly four digits", opts.code)
	}

	var (
		keySrc keypad.Source
		inputs sensor.Inputs
		ranger sensor.Ranger
		tones  tone.Player
		leds   led.RGB
	)
	if opts.fake {
		logger.Info().Msg("using fake hardware")
		keySrc = keypad.NewFakeSource()
		inputs = &sensor.FakeInputs{}
		ranger = sensor.NewFakeRanger()
		tones = tone.Silent{}
		leds = &led.Fake{}
	} else {
		ks, err := keypad.NewMatrixSource(opts.chip, keypad.DefaultRowPins, keypad.DefaultColPins)
		if err != nil {
			return fmt.Errorf("open keypad: %w", err)
		}
		defer ks.Close()
		keySrc = ks

		in, err := sensor.NewRealInputs(opts.chip, opts.pinPIROuter, opts.pinPIRInner, opts.pinDoor)
		if err != nil {
			return fmt.Errorf("open detectors: %w", err)
		}
		defer in.Close()
		inputs = in

		rg, err := sensor.NewRealRanger(opts.chip, opts.pinTrig, opts.pinEcho)
		if err != nil {
			return fmt.Errorf("open ranger: %w", err)
		}
		defer rg.Close()
		ranger = rg

		bz, err := tone.NewBuzzer(opts.chip, opts.pinBuzzer)
		if err != nil {
			return fmt.Errorf("open buzzer: %w", err)
		}
		defer bz.Close()
		tones = bz

		rgb, err := led.NewRealRGB(opts.chip, opts.pinLEDRed, opts.pinLEDGreen, opts.pinLEDBlue)
		if err != nil {
			return fmt.Errorf("open led: %w", err)
		}
		defer rgb.Close()
		leds = rgb
	}

	// Print state mode: one read of every detector, then exit.
	if opts.printState {
		outer, err := inputs.MotionOuter()
		if err != nil {
			return fmt.Errorf("read outer pir: %w", err)
		}
		inner, err := inputs.MotionInner()
		if err != nil {
			return fmt.Errorf("read inner pir: %w", err)
		}
		door, err := inputs.DoorOpen()
		if err != nil {
			return fmt.Errorf("read door contact: %w", err)
		}
		dist, err := ranger.MeasureDistance()
		if err != nil {
			return fmt.Errorf("measure range: %w", err)
		}
		fmt.Printf("PIR outer: %s, PIR inner: %s, door: %s, range: %.1f cm\n",
			levelString(outer), levelString(inner), doorString(door), dist)
		return nil
	}

	disp := display.NewConsole(os.Stdout)
	machine := panel.NewMachine(panel.Config{Code: opts.code, EntryDelay: opts.entryDelay},
		disp, tones, leds, eventlog.NewFile(opts.logPath))
	bus := sensor.NewBus(inputs, ranger)

	publisher, err := mqtt.NewRealPublisher(opts.broker, opts.panelID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Status tracker before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:            opts.tick.Milliseconds(),
		EntryDelaySeconds: int64(opts.entryDelay / time.Second),
		Broker:            opts.broker,
		Panel:             opts.panelID,
		HTTPAddr:          opts.httpAddr,
		LogPath:           opts.logPath,
		WSBroker:          opts.wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		logger.Info().Msg("published startup event")
	}

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info().Str("addr", opts.httpAddr).Msg("http status server listening")
	}

	selfTest(disp, tones, leds)
	tracker.SetReady(true)

	logger.Info().
		Dur("tick", opts.tick).
		Dur("entry_delay", opts.entryDelay).
		Str("broker", opts.broker).
		Str("panel", opts.panelID).
		Dur("heartbeat", opts.heartbeat).
		Msg("started")

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(machine, bus, keypad.NewInput(keySrc), publisher, publisher, tracker,
		opts.heartbeat, time.Now, ticker.C, sigCh)
}

// runLoop owns the machine, keypad and sensor bus; nothing else touches
// them once it starts. The keypad is polled before the detectors so a
// disarm keyed in the same tick a detector trips wins, and the detectors
// are read only while the panel is armed.
func runLoop(m *panel.Machine, bus *sensor.Bus, keys *keypad.Input, publisher mqtt.Publisher,
	mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	logger := log.WithComponent("loop")

	startTime := now()
	lastHeartbeat := startTime

	dispatch := func(events []panel.Event) {
		for _, ev := range events {
			logger.Info().
				Str("kind", string(ev.Kind)).
				Str("state", ev.State.String()).
				Msg(ev.Message)
			if tracker != nil {
				tracker.RecordEvent(ev)
			}
			if err := publisher.PublishEvent(ev); err != nil {
				logger.Warn().Err(err).Msg("event publish error")
			}
		}
	}

	var (
		lastState panel.ArmState
		lastDelay bool
	)
	publishState := func(t time.Time) {
		st := mqtt.State{
			Time:                t,
			ArmState:            m.State(),
			EntryDelayActive:    m.EntryDelayActive(),
			EntryDelayRemaining: m.EntryDelayRemaining(t),
		}
		if err := publisher.PublishState(st); err != nil {
			logger.Warn().Err(err).Msg("state publish error")
		}
		lastState = m.State()
		lastDelay = m.EntryDelayActive()
	}

	dispatch(m.Start(startTime))
	publishState(startTime)

	for {
		select {
		case s := <-sig:
			logger.Info().Str("signal", s.String()).Msg("shutting down")
			signalName := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				signalName = "SIGINT"
			case syscall.SIGTERM:
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Warn().Err(err).Msg("failed to publish shutdown event")
			} else {
				logger.Info().Msg("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()

			var events []panel.Event
			if k, ok := keys.Poll(); ok {
				events = append(events, m.HandleKey(k, t)...)
			}
			if m.SensorsActive() {
				for _, ev := range bus.Poll(t, !m.EntryDelayActive()) {
					events = append(events, m.HandleSensor(ev, t)...)
				}
			}
			events = append(events, m.Tick(t)...)

			dispatch(events)

			// The retained state topic follows every arm state or
			// delay transition.
			if m.State() != lastState || m.EntryDelayActive() != lastDelay {
				publishState(t)
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for the heartbeat snapshot.
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(m.State(), m.Context(), m.EntryDelayActive(),
						m.EntryDelayRemaining(t), bus.InAlertZone())
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					logger.Warn().Err(err).Msg("heartbeat publish error")
				}
			}

			// Update the tracker for HTTP consumers.
			if tracker != nil {
				tracker.Update(m.State(), m.Context(), m.EntryDelayActive(),
					m.EntryDelayRemaining(t), bus.InAlertZone())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// selfTest cycles the LED legs and chirps the buzzer so a dead indicator
// is caught at power-on, before the machine takes over the display.
func selfTest(disp display.Display, tones tone.Player, leds led.RGB) {
	disp.ShowStatus("Starting...")
	leds.Set(true, false, false)
	time.Sleep(200 * time.Millisecond)
	leds.Set(false, true, false)
	time.Sleep(200 * time.Millisecond)
	leds.Set(false, false, true)
	time.Sleep(200 * time.Millisecond)
	leds.Set(false, false, false)
	tones.Play(440, 100*time.Millisecond)
	tones.Play(880, 100*time.Millisecond)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "CLEAR"
}

func doorString(open bool) string {
	if open {
		return "OPEN"
	}
	return "CLOSED"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		logger := log.WithComponent("main")
		logger.Warn().Str("broker", broker).Err(err).Msg("cannot parse broker address for ws-broker")
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
