package elasticsearch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	errResultNotJSON   = errors.New("result is not JSON")
	errResultNotObject = errors.New("result data is not an object")
)

// resultInfo is what a transport result says about the query.
type resultInfo struct {
	// Status of a legacy [status, data] pair, 0 when the result is not one.
	Status  int
	Took    int64
	HasTook bool
}

// inspectResult reads the took duration out of a transport result. 8.x+
// results report any present took, 0 included; older ones only a truthy one.
// A result that is not complete is a prefix of the body and is not
// validated. The returned info is valid up to the point the error occurred.
func inspectResult(raw []byte, modern, complete bool) (resultInfo, error) {
	var info resultInfo
	if len(strings.TrimSpace(string(raw))) == 0 {
		return info, nil
	}
	if complete && !gjson.ValidBytes(raw) {
		return info, errResultNotJSON
	}
	data := gjson.ParseBytes(raw)
	if data.IsArray() {
		pair := data.Array()
		if len(pair) == 2 && pair[0].Type == gjson.Number {
			info.Status = int(pair[0].Int())
			data = pair[1]
		}
	}
	if !data.IsObject() {
		return info, errResultNotObject
	}

	took := data.Get("took")
	if !took.Exists() || took.Type == gjson.Null {
		return info, nil
	}
	if !modern && !truthy(took) {
		return info, nil
	}
	v, err := toInt(took)
	if err != nil {
		return info, err
	}
	info.Took, info.HasTook = v, true
	return info, nil
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	}
	return true
}

func toInt(r gjson.Result) (int64, error) {
	switch r.Type {
	case gjson.Number:
		return int64(r.Num), nil
	case gjson.True:
		return 1, nil
	case gjson.False:
		return 0, nil
	case gjson.String:
		v, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("took %q is not an integer: %w", r.Str, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("took %s is not a number", r.Raw)
}
