package function

import (
	"encoding/json"
	"time"
)

func InArray(needle string, haystack []string) bool {
	if len(haystack) > 0 {
		for _, item := range haystack {
			if item == needle {
				return true
			}
		}
	}
	return false
}

// Json_encode 序列化为JSON字符串，失败返回空串
func Json_encode(data interface{}) string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(jsonBytes)
}

// Json_decode 反序列化JSON字符串
func Json_decode(str string, v interface{}) error {
	return json.Unmarshal([]byte(str), v)
}

// TimeToStr 时间格式化（layout为空时默认 2006-01-02 15:04:05）
func TimeToStr(t time.Time, layout string) string {
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}
	return t.Format(layout)
}
