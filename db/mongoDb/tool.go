package mongoDb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetData 返回原始查询结果
func (m *Db) GetData() ([]map[string]interface{}, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Data, nil
}

// IdToObjectID 字符串转ObjectID
func IdToObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("转换ObjectID失败: %v", err)
	}
	return oid, nil
}

// ObjectIDToString ObjectID转字符串
func ObjectIDToString(oid primitive.ObjectID) string {
	return oid.Hex()
}

// MapToBsonD map转bson.D（用于拼接查询/更新条件）
func MapToBsonD(data map[string]interface{}) bson.D {
	d := make(bson.D, 0, len(data))
	for k, v := range data {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}
