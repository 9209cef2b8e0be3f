package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/driver"
	"github.com/peternagy/dbquerytool/internal/session"
	"github.com/peternagy/dbquerytool/internal/types"
)

// resultRecord wraps a key-value reply as the single record {"result": v}.
func resultRecord(v types.Value) []types.Object {
	return []types.Object{{{Name: "result", Value: v}}}
}

func stringsValue(items []string) types.Value {
	return types.FromInterface(items)
}

func invalidKV(field, reason string) error {
	return &core.ValidationError{Kind: types.KindRedis, Field: field, Reason: reason}
}

func (d *Dispatcher) planKeyValue(sess *session.Session, req types.QueryRequest) (*plan, error) {
	kv, ok := sess.KeyValue()
	if !ok {
		return nil, invalidKV("session", "session has no key-value handle")
	}

	cmd := req.Command
	if cmd == types.CmdUnknown {
		return nil, invalidKV("command", "a command is required")
	}
	key := strings.TrimSpace(req.Key)
	body := strings.TrimSpace(req.Body)
	if cmd.NeedsKey() && key == "" {
		return nil, invalidKV("key", fmt.Sprintf("%s requires a key", cmd))
	}

	p := &plan{
		op:     cmd.String(),
		target: key,
		entry:  types.HistoryEntry{Query: historyText(cmd, key, body)},
	}

	var exec func(ctx context.Context) (types.Value, error)
	switch cmd {
	case types.CmdGet:
		exec = func(ctx context.Context) (types.Value, error) { return kv.Get(ctx, key) }

	case types.CmdSet:
		if req.TTL < 0 {
			return nil, invalidKV("ttl", "expiry must not be negative")
		}
		exec = func(ctx context.Context) (types.Value, error) {
			if err := kv.Set(ctx, key, body, req.TTL); err != nil {
				return types.Null(), err
			}
			return types.Bool(true), nil
		}

	case types.CmdDel:
		exec = func(ctx context.Context) (types.Value, error) {
			n, err := kv.Del(ctx, key)
			return types.Int(n), err
		}

	case types.CmdKeys:
		pattern := key
		if pattern == "" {
			pattern = "*"
		}
		limit := int(req.Limit)
		exec = func(ctx context.Context) (types.Value, error) {
			keys, err := kv.Keys(ctx, pattern, limit)
			if err != nil {
				return types.Null(), err
			}
			sort.Strings(keys)
			return stringsValue(keys), nil
		}

	case types.CmdHGet:
		if body == "" {
			return nil, invalidKV("field", "HGET requires a field name in the body")
		}
		exec = func(ctx context.Context) (types.Value, error) { return kv.HGet(ctx, key, body) }

	case types.CmdHGetAll:
		exec = func(ctx context.Context) (types.Value, error) {
			fields, err := kv.HGetAll(ctx, key)
			if err != nil {
				return types.Null(), err
			}
			return types.FromInterface(fields), nil
		}

	case types.CmdLRange:
		start, stop, err := parseRange(body)
		if err != nil {
			return nil, err
		}
		exec = func(ctx context.Context) (types.Value, error) {
			items, err := kv.LRange(ctx, key, start, stop)
			return stringsValue(items), err
		}

	case types.CmdSMembers:
		exec = func(ctx context.Context) (types.Value, error) {
			members, err := kv.SMembers(ctx, key)
			sort.Strings(members)
			return stringsValue(members), err
		}

	case types.CmdZRange:
		start, stop, err := parseRange(body)
		if err != nil {
			return nil, err
		}
		exec = func(ctx context.Context) (types.Value, error) {
			members, err := kv.ZRangeWithScores(ctx, key, start, stop)
			return scoredValue(members), err
		}

	case types.CmdTTL:
		exec = func(ctx context.Context) (types.Value, error) {
			ttl, err := kv.TTL(ctx, key)
			return types.Int(ttl), err
		}

	case types.CmdInfo:
		exec = func(ctx context.Context) (types.Value, error) {
			info, err := kv.Info(ctx, key)
			return types.ObjectOf(info), err
		}

	case types.CmdDBSize:
		exec = func(ctx context.Context) (types.Value, error) {
			n, err := kv.DBSize(ctx)
			return types.Int(n), err
		}

	case types.CmdRaw:
		args, err := parseRawArgs(body)
		if err != nil {
			return nil, err
		}
		exec = func(ctx context.Context) (types.Value, error) { return kv.Do(ctx, args...) }

	default:
		return nil, invalidKV("command", fmt.Sprintf("unsupported command %s", cmd))
	}

	p.exec = func(ctx context.Context) ([]types.Object, error) {
		v, err := exec(ctx)
		if err != nil {
			return nil, err
		}
		return resultRecord(v), nil
	}
	return p, nil
}

// historyText renders a key-value request the way it is kept in history:
// "CMD key body", "CMD key", or "RAW body".
func historyText(cmd types.KVCommand, key, body string) string {
	parts := []string{cmd.String()}
	if cmd != types.CmdRaw && key != "" {
		parts = append(parts, key)
	}
	if body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, " ")
}

// ParseCommandText turns a command line in history form back into a
// request: "CMD key body", "CMD key", "DBSIZE" or "RAW body".
func ParseCommandText(text string) (types.QueryRequest, error) {
	name, rest := cutField(text)
	cmd, err := types.ParseKVCommand(name)
	if err != nil {
		return types.QueryRequest{}, invalidKV("command", err.Error())
	}
	req := types.QueryRequest{Kind: types.KindRedis, Command: cmd}
	switch cmd {
	case types.CmdRaw, types.CmdDBSize:
		req.Body = rest
	default:
		req.Key, req.Body = cutField(rest)
	}
	return req, nil
}

// cutField splits off the first whitespace-delimited field.
func cutField(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// parseRange reads "start stop" with defaults 0 and -1.
func parseRange(body string) (int64, int64, error) {
	bounds := []int64{0, -1}
	fields := strings.Fields(body)
	if len(fields) > 2 {
		return 0, 0, invalidKV("range", fmt.Sprintf("expected \"start stop\", got %q", body))
	}
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, 0, invalidKV("range", fmt.Sprintf("%q is not an integer", f))
		}
		bounds[i] = n
	}
	return bounds[0], bounds[1], nil
}

// parseRawArgs decodes a JSON array of command tokens.
func parseRawArgs(body string) ([]interface{}, error) {
	if body == "" {
		return nil, invalidKV("body", "RAW requires a JSON array of command tokens")
	}
	v, err := types.ParseOrderedJSON([]byte(body))
	if err != nil {
		return nil, &core.ValidationError{Kind: types.KindRedis, Field: "body", Reason: "not valid JSON", Err: err}
	}
	items, ok := v.Items()
	if !ok || len(items) == 0 {
		return nil, invalidKV("body", "RAW requires a non-empty JSON array")
	}

	args := make([]interface{}, len(items))
	for i, it := range items {
		switch it.Kind() {
		case types.StringValue, types.IntValue, types.FloatValue, types.BoolValue:
			args[i] = it.Interface()
		default:
			return nil, invalidKV("body", fmt.Sprintf("token %d must be a string, number or boolean", i))
		}
	}
	return args, nil
}

// scoredValue renders sorted-set members as [member, score] pairs.
func scoredValue(members []driver.ScoredMember) types.Value {
	vals := make([]types.Value, len(members))
	for i, m := range members {
		vals[i] = types.Array(types.String(m.Member), types.Float(m.Score))
	}
	return types.Array(vals...)
}
