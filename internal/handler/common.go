package handler

import (
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
)

// dbTimeout bounds the duration of database work done on behalf of a
// single request.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user's ID from the echo
// context.  The JWT middleware stores the `sub` claim under
// "user_id"; JSON numbers arrive as float64, but we tolerate the
// other encodings too.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter and rejects zero.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
