package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KVCommand is the closed set of key-value commands the dispatcher understands.
type KVCommand int

const (
	CmdUnknown KVCommand = iota
	CmdGet
	CmdSet
	CmdDel
	CmdKeys
	CmdHGet
	CmdHGetAll
	CmdLRange
	CmdSMembers
	CmdZRange
	CmdTTL
	CmdInfo
	CmdDBSize
	CmdRaw
)

var kvCommandNames = map[KVCommand]string{
	CmdGet:      "GET",
	CmdSet:      "SET",
	CmdDel:      "DEL",
	CmdKeys:     "KEYS",
	CmdHGet:     "HGET",
	CmdHGetAll:  "HGETALL",
	CmdLRange:   "LRANGE",
	CmdSMembers: "SMEMBERS",
	CmdZRange:   "ZRANGE",
	CmdTTL:      "TTL",
	CmdInfo:     "INFO",
	CmdDBSize:   "DBSIZE",
	CmdRaw:      "RAW",
}

// KVCommands lists every supported command in display order.
var KVCommands = []KVCommand{
	CmdGet, CmdSet, CmdDel, CmdKeys, CmdHGet, CmdHGetAll, CmdLRange,
	CmdSMembers, CmdZRange, CmdTTL, CmdInfo, CmdDBSize, CmdRaw,
}

func (c KVCommand) String() string {
	if name, ok := kvCommandNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// NeedsKey reports whether the command operates on a single named key.
func (c KVCommand) NeedsKey() bool {
	switch c {
	case CmdGet, CmdSet, CmdDel, CmdHGet, CmdHGetAll, CmdLRange, CmdSMembers, CmdZRange, CmdTTL:
		return true
	}
	return false
}

// ParseKVCommand resolves a case-insensitive command name.
// CUSTOM is accepted as an alias of RAW.
func ParseKVCommand(s string) (KVCommand, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "CUSTOM" {
		return CmdRaw, nil
	}
	for c, n := range kvCommandNames {
		if n == name {
			return c, nil
		}
	}
	return CmdUnknown, fmt.Errorf("unsupported command %q", s)
}

func (c KVCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *KVCommand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKVCommand(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
