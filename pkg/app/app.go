package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/boilerworks/supervisor/pkg/alarm"
	"github.com/boilerworks/supervisor/pkg/api/v1/config"
	"github.com/boilerworks/supervisor/pkg/api/v1/meter"
	"github.com/boilerworks/supervisor/pkg/api/v1/types"
	"github.com/boilerworks/supervisor/pkg/controller"
	dummycontroller "github.com/boilerworks/supervisor/pkg/controller/dummy"
	"github.com/boilerworks/supervisor/pkg/controller/steamboiler"
	"github.com/boilerworks/supervisor/pkg/mailbox"
	"github.com/boilerworks/supervisor/pkg/mbus"
	"github.com/boilerworks/supervisor/pkg/modbusclient"
	"github.com/boilerworks/supervisor/pkg/mqtt"
	"github.com/boilerworks/supervisor/pkg/plant"
	dummyplant "github.com/boilerworks/supervisor/pkg/plant/dummy"
	"github.com/boilerworks/supervisor/pkg/plant/modbusplant"
	"github.com/boilerworks/supervisor/pkg/state"
	modbusapi "github.com/goburrow/modbus"
	"github.com/sirupsen/logrus"
)

var httpClient = &http.Client{
	Timeout: time.Second * 30,
}

type App struct {
	wg     *sync.WaitGroup
	config *config.CliConfig

	boilerConfig *config.BoilerConfig
	controller   controller.Controller
	plant        plant.Plant
	publisher    *mqtt.Publisher
	alarms       *alarm.ActiveAlarms
	mbus         *mbus.Mbus
	meterCache   *meter.Cache
}

func New(config *config.CliConfig) *App {
	return &App{
		wg:         &sync.WaitGroup{},
		config:     config,
		alarms:     &alarm.ActiveAlarms{},
		meterCache: &meter.Cache{},
	}
}

func (a *App) Start(ctx context.Context) error {
	err := a.config.LoadToken()
	if err != nil {
		return fmt.Errorf("error loading token: %w", err)
	}
	err = a.config.LoadSerial()
	if err != nil {
		logrus.Warn(err)
	}

	boilerConfig, err := a.boilerConfigSource()
	if err != nil {
		return err
	}
	err = boilerConfig.Validate()
	if err != nil {
		return fmt.Errorf("error validating boiler config: %w", err)
	}
	a.boilerConfig = boilerConfig

	err = a.setupPlant()
	if err != nil {
		return err
	}
	a.setupController()

	if a.config.EmbeddedMqtt {
		_, err := mqtt.Start(ctx, a.wg)
		if err != nil {
			return fmt.Errorf("error starting embedded broker: %w", err)
		}
	}
	if a.config.Broker != "" {
		a.publisher, err = mqtt.NewPublisher(a.config.Broker, "boiler-supervisor")
		if err != nil {
			return fmt.Errorf("error connecting to broker: %w", err)
		}
	}
	for _, m := range boilerConfig.Meters {
		if m.InterfaceType == "mbus" {
			a.mbus = mbus.New()
		}
	}

	a.wg.Add(1)
	go a.controllerLoop(ctx)
	return nil
}

func (a *App) Wait() {
	a.wg.Wait()
}

func (a *App) setupPlant() error {
	address := a.boilerConfig.Address
	if a.config.Address != "" {
		address = a.config.Address
	}

	plantType := a.boilerConfig.PlantType
	if a.config.PlantType != "" {
		plantType = types.PlantType(a.config.PlantType)
	}

	switch plantType {
	case types.PlantTypeModbus:
		handler := modbusapi.NewTCPClientHandler(address)
		client := modbusclient.New(modbusapi.NewClient(handler), handler.Close)
		a.plant = modbusplant.New(client, a.boilerConfig.NumberOfPumps(), handler.Close)
	case types.PlantTypeDummy:
		a.plant = dummyplant.New()
	default:
		return fmt.Errorf("unknown plant type: %s", plantType)
	}
	return nil
}

func (a *App) setupController() {
	if a.config.ReadOnly {
		a.controller = dummycontroller.New()
		return
	}
	a.controller = steamboiler.New(a.boilerConfig)
}

func (a *App) controllerLoop(ctx context.Context) {
	defer a.wg.Done()
	delay := nextCycleDelay(time.Now(), a.config.Cycle())
	timer := time.NewTimer(delay)
	logrus.Debug("scheduling first cycle in ", delay)
	for {
		select {
		case <-timer.C:
			timer.Reset(a.config.Cycle())
			a.runCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) runCycle(ctx context.Context) {
	incoming, err := a.plant.Poll(ctx)
	if err != nil {
		logrus.Error("error polling plant: ", err)
		// an unreadable plant is a transmission failure for the core
		incoming = &mailbox.Mailbox{}
	}

	outgoing := &mailbox.Mailbox{}
	a.controller.Clock(incoming, outgoing)

	err = a.plant.Apply(ctx, outgoing)
	if err != nil {
		logrus.Error("error applying commands: ", err)
	}

	a.trackAlarms(outgoing)

	logrus.WithFields(logrus.Fields{
		"status":   a.controller.StatusMessage(),
		"received": incoming.Size(),
		"sent":     outgoing.Size(),
	}).Debug("cycle complete")

	a.publish()
}

func (a *App) trackAlarms(outgoing *mailbox.Mailbox) {
	for _, m := range outgoing.Messages() {
		switch m.Kind {
		case mailbox.KindPumpFailure, mailbox.KindPumpControlFailure,
			mailbox.KindSteamFailure, mailbox.KindLevelFailure:
			a.raiseAlarm(m.String())
		case mailbox.KindMode:
			if m.Mode == mailbox.ModeNormal {
				if a.alarms.Clear() {
					logrus.Info("back to normal, alarms cleared")
				}
			}
			if m.Mode == mailbox.ModeEmergencyStop {
				a.raiseAlarm(string(mailbox.ModeEmergencyStop))
			}
		}
	}
}

func (a *App) raiseAlarm(alarm string) {
	if a.alarms.Add(alarm) {
		logrus.Warn("alarm raised: ", alarm)
		if a.publisher != nil {
			err := a.publisher.PublishAlarm(alarm)
			if err != nil {
				logrus.Error("error publishing alarm: ", err)
			}
		}
	}
}

func (a *App) publish() {
	s := a.controller.State()

	if a.publisher != nil {
		err := a.publisher.PublishState(s)
		if err != nil {
			logrus.Error("error publishing state: ", err)
		}
	}

	a.readMeters()

	err := a.postMetrics(s)
	if err != nil {
		logrus.Error("error posting metrics: ", err)
	}
}

func (a *App) readMeters() {
	if a.mbus == nil {
		return
	}
	for _, m := range a.boilerConfig.Meters {
		if m.InterfaceType != "mbus" {
			continue
		}
		data, err := a.mbus.ReadValues(m.Model, m.PrimaryID)
		if err != nil {
			logrus.Error("error reading feedwater meter: ", err)
			continue
		}
		a.meterCache.Set(data)
	}
}

type metricsPayload struct {
	Serial string                 `json:"serial,omitempty"`
	State  map[string]interface{} `json:"state"`
	Meter  *meter.Data            `json:"meter,omitempty"`
	Alarms []string               `json:"alarms,omitempty"`
}

func (a *App) postMetrics(s *state.State) error {
	if a.config.Server == "" {
		return nil
	}

	payload := &metricsPayload{
		Serial: a.config.SerialID(),
		State:  s.Map(),
		Meter:  a.meterCache.Get(),
		Alarms: a.alarms.Active(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/api/supervisor/metrics-v1", a.config.Server)
	req, err := http.NewRequest("POST", u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("Authorization", a.config.Token())

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("error posting metrics StatusCode: %d", resp.StatusCode)
	}
	return nil
}

func (a *App) boilerConfigSource() (*config.BoilerConfig, error) {
	if a.config.ConfigFile != "" {
		return a.loadBoilerConfig()
	}
	return a.fetchBoilerConfig()
}

func (a *App) loadBoilerConfig() (*config.BoilerConfig, error) {
	b, err := os.ReadFile(a.config.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("error reading boiler config: %w", err)
	}
	response := &config.BoilerConfig{}
	err = json.Unmarshal(b, response)
	return response, err
}

func (a *App) fetchBoilerConfig() (*config.BoilerConfig, error) {
	u := fmt.Sprintf("%s/api/supervisor/boiler-v1", a.config.Server)
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("Authorization", a.config.Token())

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("error fetching boiler config StatusCode: %d", resp.StatusCode)
	}

	response := &config.BoilerConfig{}
	err = json.NewDecoder(resp.Body).Decode(response)
	return response, err
}
