package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"

	"github.com/agendo/agendo/pkg/event"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Workday  Workday  `koanf:"workday"`
	Calendar Calendar `koanf:"calendar"`
}

type Server struct {
	Port int `koanf:"port"`
}

// Workday bounds the default working day; both values are HH:MM
// wall-clock times.
type Workday struct {
	Start string `koanf:"start"`
	End   string `koanf:"end"`
}

// Calendar describes the calendar created at startup. An empty name
// disables it.
type Calendar struct {
	Name     string `koanf:"name"`
	Timezone string `koanf:"timezone"`
}

// Hours resolves the configured workday bounds.
func (w Workday) Hours() (event.WorkingHours, error) {
	start, err := event.ParseTimeOfDay(w.Start)
	if err != nil {
		return event.WorkingHours{}, err
	}
	end, err := event.ParseTimeOfDay(w.End)
	if err != nil {
		return event.WorkingHours{}, err
	}
	return event.WorkingHours{Start: start, End: end}, nil
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Port: 8181,
		},
		Workday: Workday{
			Start: "08:00",
			End:   "17:00",
		},
		Calendar: Calendar{
			Name:     "default",
			Timezone: "America/New_York",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "AGENDO_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "AGENDO_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
