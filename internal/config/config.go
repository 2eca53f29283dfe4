package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CollectionConfig struct {
	Folder   string         `mapstructure:"folder"`
	Defaults map[string]any `mapstructure:"defaults"`
}

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
		// Public site the RSS links point at.
		PublicURL string `mapstructure:"public_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
	Records struct {
		// postgres | mongo | memory
		Driver   string        `mapstructure:"driver"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"records"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret         string        `mapstructure:"jwt_secret"`
		TokenLifespan     time.Duration `mapstructure:"token_lifespan"`
		AdminEmail        string        `mapstructure:"admin_email"`
		AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	} `mapstructure:"auth"`
	Media struct {
		// cloudinary | s3
		Provider      string `mapstructure:"provider"`
		DefaultFolder string `mapstructure:"default_folder"`
	} `mapstructure:"media"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	S3 struct {
		Region        string `mapstructure:"region"`
		Bucket        string `mapstructure:"bucket"`
		Endpoint      string `mapstructure:"endpoint"`
		PublicBaseURL string `mapstructure:"public_base_url"`
	} `mapstructure:"s3"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
	Presentation struct {
		ColumnWidth int `mapstructure:"column_width"`
		MinHeight   int `mapstructure:"min_height"`
		MaxHeight   int `mapstructure:"max_height"`
	} `mapstructure:"presentation"`
	Reconcile struct {
		AutoPurge bool `mapstructure:"auto_purge"`
	} `mapstructure:"reconcile"`
	Collections map[string]CollectionConfig `mapstructure:"collections"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.public_url", "http://localhost:3000")
	v.SetDefault("records.driver", "postgres")
	v.SetDefault("records.cache_ttl", 5*time.Minute)
	v.SetDefault("mongo.database", "summit")
	v.SetDefault("kafka.group_id", "media-reconciler-group")
	v.SetDefault("auth.token_lifespan", 12*time.Hour)
	v.SetDefault("media.provider", "cloudinary")
	v.SetDefault("media.default_folder", "summit-2027")
	v.SetDefault("presentation.column_width", 300)
	v.SetDefault("presentation.min_height", 200)
	v.SetDefault("presentation.max_height", 600)
	v.SetDefault("collections", map[string]any{
		"carousel": map[string]any{"folder": "summit-2027/carousel"},
		"speakers": map[string]any{
			"folder": "summit-2027/speakers",
			"defaults": map[string]any{
				"name":    "New Speaker",
				"title":   "Title",
				"company": "Company",
			},
		},
		"gallery": map[string]any{"folder": "summit-2027/gallery"},
	})
}

// LoadConfig reads config.yaml from the given directories (current directory when none are
// given), then .env, then the process environment. Later sources win.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, strings.TrimSuffix(p, "/")+"/.env")
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("records.driver", "RECORDS_DRIVER")
	v.BindEnv("records.cache_ttl", "RECORDS_CACHE_TTL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.admin_email", "ADMIN_EMAIL")
	v.BindEnv("auth.admin_password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("media.provider", "MEDIA_PROVIDER")
	v.BindEnv("media.default_folder", "MEDIA_DEFAULT_FOLDER")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("s3.region", "S3_REGION")
	v.BindEnv("s3.bucket", "S3_BUCKET")
	v.BindEnv("s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("s3.public_base_url", "S3_PUBLIC_BASE_URL")

	v.BindEnv("jaeger.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("reconcile.auto_purge", "RECONCILE_AUTO_PURGE")

	err = v.Unmarshal(&cfg)
	if err != nil {
		return
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)
	return
}

// KAFKA_BROKERS arrives as a single comma separated value when set through the environment.
func splitBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, b := range in {
		for _, part := range strings.Split(b, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
