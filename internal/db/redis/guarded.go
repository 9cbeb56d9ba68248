package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/foundmatch/internal/db"
)

// ARGV: guard field, #block, block values..., #keep, keep fields..., field/value pairs...
// Reply: "1" or "0" (written), followed by the hash as it was before the call.
var hsetGuardedScript = rueidis.NewLuaScript(`
local cur = redis.call('HGETALL', KEYS[1])
local h = {}
for i = 1, #cur, 2 do h[cur[i]] = cur[i + 1] end

local i = 2
local nblock = tonumber(ARGV[i])
for j = 1, nblock do
  if h[ARGV[1]] == ARGV[i + j] then
    return {'0', unpack(cur)}
  end
end

i = i + nblock + 1
local nkeep = tonumber(ARGV[i])
local keep = {}
for j = 1, nkeep do keep[ARGV[i + j]] = true end

i = i + nkeep + 1
local args = {}
while i < #ARGV do
  local f, v = ARGV[i], ARGV[i + 1]
  if not (keep[f] and h[f]) then
    args[#args + 1] = f
    args[#args + 1] = v
  end
  i = i + 2
end
if #args > 0 then redis.call('HSET', KEYS[1], unpack(args)) end
return {'1', unpack(cur)}
`)

// HSetGuarded implements db.GuardedHashStore with a Lua script, so the check and the
// write cannot interleave with other clients.
func (s *Store) HSetGuarded(
	ctx context.Context, key string, fields map[string]string, guard db.HashGuard,
) (map[string]string, bool, error) {
	args := make([]string, 0, 3+len(guard.Block)+len(guard.Keep)+2*len(fields))
	args = append(args, guard.Field, strconv.Itoa(len(guard.Block)))
	args = append(args, guard.Block...)
	args = append(args, strconv.Itoa(len(guard.Keep)))
	args = append(args, guard.Keep...)

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		args = append(args, k, fields[k])
	}

	reply, err := hsetGuardedScript.Exec(ctx, s.client, []string{key}, args).ToArray()
	if err != nil {
		return nil, false, &db.Error{Op: db.OpHSetGuarded, Err: err}
	}
	return parseGuardedReply(reply)
}

func parseGuardedReply(reply []rueidis.RedisMessage) (map[string]string, bool, error) {
	if len(reply) == 0 || len(reply)%2 != 1 {
		return nil, false, &db.Error{
			Op:  db.OpHSetGuarded,
			Err: fmt.Errorf("malformed reply of %d elements", len(reply)),
		}
	}

	flag, err := reply[0].ToString()
	if err != nil {
		return nil, false, &db.Error{Op: db.OpHSetGuarded, Err: err}
	}

	prev := make(map[string]string, (len(reply)-1)/2)
	for i := 1; i < len(reply); i += 2 {
		k, err := reply[i].ToString()
		if err != nil {
			return nil, false, &db.Error{Op: db.OpHSetGuarded, Err: err}
		}
		v, err := reply[i+1].ToString()
		if err != nil {
			return nil, false, &db.Error{Op: db.OpHSetGuarded, Err: err}
		}
		prev[k] = v
	}
	return prev, flag == "1", nil
}
