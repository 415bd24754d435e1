package util

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Prefix returns s prefixed with p unless it already carries it, so
// "stun.example.com" and "stun:stun.example.com" normalize the same way.
func Prefix(p, s string) string {
	if strings.HasPrefix(s, p) {
		return s
	}
	return p + s
}

// AppendPort appends the default port to addr when it has none.
func AppendPort(addr string, port int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

func GetEnvBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		val, err := strconv.ParseBool(v)
		FatalfIf(err != nil, "Cannot parse envvar: %s: %v", v, err)

		return val
	}
	return defaultVal
}

func LookupEnvOr(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

var stderr = flag.CommandLine.Output()

func FatalfIf(condition bool, format string, v ...interface{}) {
	if condition {
		Fatalf(format, v...)
	}
}

func Fatalf(format string, v ...interface{}) {
	Printf(format+"\n", v...)
	os.Exit(1)
}

func Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(stderr, format, a...)
}

func If[T any](condition bool, a, b T) T {
	if condition {
		return a
	}

	return b
}
