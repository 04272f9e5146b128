package logger

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dfpopp/cardmart/config"
)

// Logger 日志接口
type Logger interface {
	Info(v ...interface{})   //正常日志
	Warn(v ...interface{})   //警告日志
	Error(v ...interface{})  //错误日志
	Affair(v ...interface{}) //事务错误日志
	GetEnv() string          //获取当前运行环境
}

// DefaultLogger 默认日志实现（按天切分的文件日志，非prod环境同时回显控制台）
type DefaultLogger struct {
	infoLogger   *log.Logger
	warnLogger   *log.Logger
	errorLogger  *log.Logger
	affairLogger *log.Logger
	cfg          *config.AppConfig
}

var (
	defaultLogger *DefaultLogger
	once          sync.Once
)

// openDailyLog 打开某个级别当天的日志文件（目录不存在时自动创建）
func openDailyLog(base, level, name string) (*os.File, error) {
	logPath := filepath.Join(base, level, name)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %s, err=%v", filepath.Dir(logPath), err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %s, err=%v", logPath, err)
	}
	return file, nil
}

// InitLogger 初始化日志
func InitLogger(appName string) error {
	var err error
	once.Do(func() {
		cfg := config.GetAppConfig(appName)
		if cfg == nil {
			err = errors.New("应用配置未加载")
			return
		}
		today := time.Now().Format("20060102")

		infoFile, infoErr := openDailyLog(cfg.Logger.Path, "info", today+".log")
		if infoErr != nil {
			err = infoErr
			return
		}
		warnFile, warnErr := openDailyLog(cfg.Logger.Path, "warn", today+".log")
		if warnErr != nil {
			err = warnErr
			return
		}
		errFile, errErr := openDailyLog(cfg.Logger.Path, "error", today+".log")
		if errErr != nil {
			err = errErr
			return
		}
		// 事务日志不按天切分，单文件追加
		affairFile, affairErr := openDailyLog(cfg.Logger.Path, "", "affair.log")
		if affairErr != nil {
			err = affairErr
			return
		}

		defaultLogger = &DefaultLogger{
			infoLogger:   log.New(infoFile, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
			warnLogger:   log.New(warnFile, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
			errorLogger:  log.New(errFile, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
			affairLogger: log.New(affairFile, "AFFAIR: ", log.Ldate|log.Ltime|log.Lshortfile),
			cfg:          cfg,
		}
	})
	return err
}

// GetLogger 获取日志实例（未初始化时退化为控制台输出，便于单测与工具场景）
func GetLogger() Logger {
	if defaultLogger == nil {
		return consoleLogger{}
	}
	return defaultLogger
}

// consoleLogger 控制台兜底日志
type consoleLogger struct{}

func (consoleLogger) Info(v ...interface{}) {
	fmt.Println(append([]interface{}{"INFO: "}, v...)...)
}
func (consoleLogger) Warn(v ...interface{}) {
	fmt.Println(append([]interface{}{"WARN: "}, v...)...)
}
func (consoleLogger) Error(v ...interface{}) {
	fmt.Println(append([]interface{}{"ERROR: "}, v...)...)
}
func (consoleLogger) Affair(v ...interface{}) {
	fmt.Println(append([]interface{}{"AFFAIR: "}, v...)...)
}
func (consoleLogger) GetEnv() string { return "dev" }

// Info 打印信息日志
func (l *DefaultLogger) Info(v ...interface{}) {
	if l.cfg.Env == "prod" {
		l.infoLogger.Println(v...)
	} else {
		fmt.Println(append([]interface{}{"INFO: "}, v...)...)
	}
}

// Warn 打印警告日志
func (l *DefaultLogger) Warn(v ...interface{}) {
	if l.cfg.Env == "prod" {
		l.warnLogger.Println(v...)
	} else {
		fmt.Println(append([]interface{}{"WARN: "}, v...)...)
	}
}

// Error 打印错误日志
func (l *DefaultLogger) Error(v ...interface{}) {
	if l.cfg.Env == "prod" {
		l.errorLogger.Println(v...)
	} else {
		fmt.Println(append([]interface{}{"ERROR: "}, v...)...)
	}
}

// Affair 打印事务日志
func (l *DefaultLogger) Affair(v ...interface{}) {
	if l.cfg.Env == "prod" {
		l.affairLogger.Println(v...)
	} else {
		fmt.Println(append([]interface{}{"AFFAIR: "}, v...)...)
	}
}

func (l *DefaultLogger) GetEnv() string {
	return l.cfg.Env
}

// 全局快捷方法

func Info(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Info(v...)
	}
}

func Warn(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Warn(v...)
	}
}

func Error(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Error(v...)
	}
}

func Affair(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.Affair(v...)
	}
}
