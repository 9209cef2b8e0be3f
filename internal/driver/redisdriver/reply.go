package redisdriver

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/peternagy/dbquerytool/internal/types"
)

// ReplyValue normalizes a raw RESP reply into a types.Value.
func ReplyValue(reply interface{}) types.Value {
	switch r := reply.(type) {
	case nil:
		return types.Null()
	case string:
		return types.String(r)
	case []byte:
		return types.String(string(r))
	case int64:
		return types.Int(r)
	case float64:
		return types.Float(r)
	case bool:
		return types.Bool(r)
	case error:
		return types.String(r.Error())
	case []interface{}:
		items := make([]types.Value, len(r))
		for i, it := range r {
			items[i] = ReplyValue(it)
		}
		return types.Array(items...)
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(r))
		values := make(map[string]interface{}, len(r))
		for k, v := range r {
			name := fmt.Sprint(k)
			keys = append(keys, name)
			values[name] = v
		}
		sort.Strings(keys)
		obj := make(types.Object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, types.Field{Name: k, Value: ReplyValue(values[k])})
		}
		return types.ObjectOf(obj)
	default:
		return types.String(fmt.Sprint(r))
	}
}

// ParseInfo turns an INFO report into an object keeping report order.
// Section headers and blank lines are skipped; numeric values become numbers.
func ParseInfo(text string) types.Object {
	obj := types.Object{}
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		obj = obj.Set(name, infoValue(value))
	}
	return obj
}

func infoValue(s string) types.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return types.Int(i)
	}
	if strings.Trim(s, "0123456789.-+eE") == "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return types.Float(f)
		}
	}
	return types.String(s)
}
