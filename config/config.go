package config

import (
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Token   string `toml:"token" mapstructure:"token"`
	Host    string `toml:"host" mapstructure:"host"`
	Port    string `toml:"port" mapstructure:"port"`
	Libonnx string `toml:"libonnx" mapstructure:"libonnx"`

	Model    string `toml:"model" mapstructure:"model"`
	Device   string `toml:"device" mapstructure:"device"`
	Preload  bool   `toml:"preload" mapstructure:"preload"`
	PoolSize int    `toml:"pool_size" mapstructure:"pool_size"`

	ModelDir       string `toml:"model_dir" mapstructure:"model_dir"`
	LabelsFileName string `toml:"labels_file_name" mapstructure:"labels_file_name"`
	LabelsUrl      string `toml:"labels_url" mapstructure:"labels_url"`

	DefaultTopK    int   `toml:"default_top_k" mapstructure:"default_top_k"`
	MaxTopK        int   `toml:"max_top_k" mapstructure:"max_top_k"`
	MaxUploadBytes int64 `toml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

var (
	cfg = Config{
		Token:          "",
		Host:           "0.0.0.0",
		Port:           "8000",
		Model:          "resnet18",
		Device:         "",
		Preload:        false,
		PoolSize:       2,
		ModelDir:       "models",
		LabelsFileName: "imagenet_classes.txt",
		LabelsUrl:      "https://raw.githubusercontent.com/pytorch/hub/master/imagenet_classes.txt",
		DefaultTopK:    5,
		MaxTopK:        10,
		MaxUploadBytes: 10 << 20,
	}
	loadOnce sync.Once
)

func C() Config {
	loadOnce.Do(func() {
		if _, err := os.Stat("config.toml"); err == nil {
			data, err := os.ReadFile("config.toml")
			if err != nil {
				panic(err)
			}
			if err := toml.Unmarshal(data, &cfg); err != nil {
				panic(err)
			}
		}
	})
	return cfg
}
