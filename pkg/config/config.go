package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Postal  PostalConfig
	PDF     PDFConfig
	Share   ShareConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig almacenamiento local del CLI (borrador y perfiles).
type StorageConfig struct {
	Dir string // directorio de datos; por defecto ~/.chouhyo
}

// PostalConfig servicio de búsqueda de direcciones por código postal.
type PostalConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PDFConfig fuentes TrueType con glifos japoneses. Vacío = fuente por defecto de maroto.
type PDFConfig struct {
	FontPath     string
	FontBoldPath string
}

// ShareConfig URL base sobre la que se construyen los enlaces compartidos.
type ShareConfig struct {
	BaseURL string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, HTTP_PORT, STORAGE_DIR, POSTAL_BASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	timeout := getInt(v, "POSTAL_TIMEOUT_SECONDS", 5)
	if timeout <= 0 {
		return nil, fmt.Errorf("config: POSTAL_TIMEOUT_SECONDS debe ser positivo, recibido %d", timeout)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "chouhyo"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Storage: StorageConfig{
			Dir: getString(v, "STORAGE_DIR", defaultStorageDir()),
		},
		Postal: PostalConfig{
			BaseURL: getString(v, "POSTAL_BASE_URL", "https://zipcloud.ibsnet.co.jp/api/search"),
			Timeout: time.Duration(timeout) * time.Second,
		},
		PDF: PDFConfig{
			FontPath:     getString(v, "PDF_FONT_PATH", ""),
			FontBoldPath: getString(v, "PDF_FONT_BOLD_PATH", ""),
		},
		Share: ShareConfig{
			BaseURL: getString(v, "SHARE_BASE_URL", "https://chouhyo.app/app"),
		},
	}

	return cfg, nil
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chouhyo"
	}
	return filepath.Join(home, ".chouhyo")
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
