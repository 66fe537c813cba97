package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig 远端题目 API 配置
type APIConfig struct {
	BaseURL        string        // API 根地址（必填）
	QuestionsPath  string        // 题目集合路径，默认 /questions
	AnswersPath    string        // 答案集合路径，默认 /answers
	RequestTimeout time.Duration // 单次请求超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string // 日志级别
	File       string // 日志文件路径（可选）
	MaxSize    int    // 单文件最大 MB
	MaxBackups int    // 保留旧文件数量
	MaxAge     int    // 保留天数
}

// Config 应用配置
type Config struct {
	API            APIConfig
	Log            LogConfig
	Listen         string        // Web 管理后台监听地址
	PageSize       int           // 列表每页条数
	SearchDebounce time.Duration // 搜索防抖间隔
	SessionTTL     time.Duration // 表单会话空闲过期时间
	DebugListen    string        // expvar/pprof 调试服务地址，空表示不启用
}

var globalConfig *Config
var configFilePath string

// SetConfigPath 设置配置文件路径
func SetConfigPath(path string) {
	configFilePath = path
}

// GetConfigPath 获取配置文件路径
func GetConfigPath() string {
	return configFilePath
}

// ConfigFile 配置文件结构（用于 YAML/JSON 解析）
type ConfigFile struct {
	APIBaseURL            string `yaml:"api_base_url" json:"api_base_url"`
	QuestionsPath         string `yaml:"questions_path" json:"questions_path"`
	AnswersPath           string `yaml:"answers_path" json:"answers_path"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	PageSize              int    `yaml:"page_size" json:"page_size"`
	SearchDebounceMs      int    `yaml:"search_debounce_ms" json:"search_debounce_ms"`
	Listen                string `yaml:"listen" json:"listen"`
	SessionTTLMinutes     int    `yaml:"session_ttl_minutes" json:"session_ttl_minutes"`
	DebugListen           string `yaml:"debug_listen" json:"debug_listen"`
	LogLevel              string `yaml:"log_level" json:"log_level"`
	LogFile               string `yaml:"log_file" json:"log_file"`
	LogMaxSizeMB          int    `yaml:"log_max_size_mb" json:"log_max_size_mb"`
	LogMaxBackups         int    `yaml:"log_max_backups" json:"log_max_backups"`
	LogMaxAgeDays         int    `yaml:"log_max_age_days" json:"log_max_age_days"`
}

// Load 加载配置
func Load() (*Config, error) {
	return LoadFromFile(configFilePath)
}

// LoadFromFile 从指定文件加载配置
// 优先级：配置文件 > 环境变量 > 默认值
func LoadFromFile(filePath string) (*Config, error) {
	if globalConfig != nil && configFilePath == filePath {
		return globalConfig, nil
	}

	cf := &ConfigFile{}
	if filePath != "" {
		loaded, err := loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		cf = loaded
	}

	config := &Config{
		API: APIConfig{
			BaseURL:        getValueFromSources(cf.APIBaseURL, getEnv("MARKETADMIN_API_URL", "")),
			QuestionsPath:  getValueFromSources(cf.QuestionsPath, getEnv("MARKETADMIN_QUESTIONS_PATH", "/questions")),
			AnswersPath:    getValueFromSources(cf.AnswersPath, getEnv("MARKETADMIN_ANSWERS_PATH", "/answers")),
			RequestTimeout: time.Duration(getIntFromSources(cf.RequestTimeoutSeconds, parseIntEnv("MARKETADMIN_REQUEST_TIMEOUT", 30))) * time.Second,
		},
		Log: LogConfig{
			Level:      getValueFromSources(cf.LogLevel, getEnv("LOG_LEVEL", "info")),
			File:       getValueFromSources(cf.LogFile, getEnv("LOG_FILE", "")),
			MaxSize:    getIntFromSources(cf.LogMaxSizeMB, parseIntEnv("LOG_MAX_SIZE_MB", 100)),
			MaxBackups: getIntFromSources(cf.LogMaxBackups, parseIntEnv("LOG_MAX_BACKUPS", 5)),
			MaxAge:     getIntFromSources(cf.LogMaxAgeDays, parseIntEnv("LOG_MAX_AGE_DAYS", 7)),
		},
		Listen:         getValueFromSources(cf.Listen, getEnv("MARKETADMIN_LISTEN", ":8080")),
		PageSize:       getIntFromSources(cf.PageSize, parseIntEnv("MARKETADMIN_PAGE_SIZE", 10)),
		SearchDebounce: time.Duration(getIntFromSources(cf.SearchDebounceMs, parseIntEnv("MARKETADMIN_SEARCH_DEBOUNCE_MS", 400))) * time.Millisecond,
		SessionTTL:     time.Duration(getIntFromSources(cf.SessionTTLMinutes, parseIntEnv("MARKETADMIN_SESSION_TTL_MINUTES", 30))) * time.Minute,
		DebugListen:    getValueFromSources(cf.DebugListen, getEnv("MARKETADMIN_DEBUG_LISTEN", "")),
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	globalConfig = config
	configFilePath = filePath
	return config, nil
}

// loadConfigFile 加载配置文件（支持 YAML 和 JSON）
func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var configFile ConfigFile
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	return &configFile, nil
}

// getValueFromSources 从多个源获取字符串值（优先级：配置文件 > 环境变量/默认值）
func getValueFromSources(configValue, envValue string) string {
	if configValue != "" {
		return configValue
	}
	return envValue
}

// getIntFromSources 从多个源获取整数值（配置文件中 0 视为未设置）
func getIntFromSources(configValue, envValue int) int {
	if configValue > 0 {
		return configValue
	}
	return envValue
}

// Get 获取全局配置（如果已加载）
func Get() *Config {
	return globalConfig
}

// Reset 清除已缓存的全局配置（测试使用）
func Reset() {
	globalConfig = nil
	configFilePath = ""
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("MARKETADMIN_API_URL 未配置")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_base_url 不是合法的 URL: %q", c.API.BaseURL)
	}
	if !strings.HasPrefix(c.API.QuestionsPath, "/") || !strings.HasPrefix(c.API.AnswersPath, "/") {
		return fmt.Errorf("questions_path/answers_path 必须以 / 开头")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds 必须大于 0")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size 必须大于 0")
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("search_debounce_ms 必须大于 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl_minutes 必须大于 0")
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
