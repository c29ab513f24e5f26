package clickhouse

import (
	"net/url"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN(ClientConfig{
		Host:        "ch.local",
		Port:        9000,
		Database:    "yielddesk",
		User:        "svc",
		Password:    "p@ss",
		DialTimeout: 2 * time.Second,
		MaxExecTime: 30 * time.Second,
		AsyncInsert: true,
	})

	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("parse %q: %v", dsn, err)
	}
	if u.Scheme != "clickhouse" || u.Host != "ch.local:9000" || u.Path != "/yielddesk" {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Fatalf("password not preserved: %q", dsn)
	}
	q := u.Query()
	if q.Get("dial_timeout") != "2s" || q.Get("max_execution_time") != "30" || q.Get("async_insert") != "1" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Has("wait_for_async_insert") || q.Has("protocol") {
		t.Fatalf("unexpected settings in %v", q)
	}
}

func TestBuildDSNHTTP(t *testing.T) {
	u, _ := url.Parse(BuildDSN(ClientConfig{Host: "h", Port: 8123, Database: "d", UseHTTP: true}))
	if u.Query().Get("protocol") != "http" {
		t.Fatalf("http protocol not set: %s", u)
	}
}
