// Package main writes a local CA plus server and client certificates for
// running the API over mutual TLS. The client files feed the shell's
// -ca, -cert and -key flags.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/taskdock/internal/certgen"
)

type options struct {
	dir    string
	hosts  string
	client string
	ttl    time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.dir, "dir", "certs", "output directory")
	flag.StringVar(&o.hosts, "hosts", "localhost,127.0.0.1", "comma-separated API host names and IPs")
	flag.StringVar(&o.client, "client", "taskdock", "client certificate common name")
	flag.DurationVar(&o.ttl, "ttl", 365*24*time.Hour, "validity of issued certificates")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into %s\n", o.dir)
}

// run creates ca.{crt,key}, server.{crt,key} and client.{crt,key} in o.dir.
// An existing CA in o.dir is reused.
func run(o options) error {
	caCert := filepath.Join(o.dir, "ca.crt")
	caKey := filepath.Join(o.dir, "ca.key")

	ca, err := certgen.LoadAuthority(caCert, caKey)
	if err != nil {
		ca, err = certgen.NewAuthority("taskdock CA", 10*o.ttl)
		if err != nil {
			return err
		}
		pair, err := ca.Pair()
		if err != nil {
			return err
		}
		if err := pair.Write(caCert, caKey); err != nil {
			return err
		}
	}

	hosts := strings.Split(o.hosts, ",")
	server, err := ca.Issue(hosts[0], certgen.ServerAuth, o.ttl, hosts...)
	if err != nil {
		return fmt.Errorf("issue server cert: %w", err)
	}
	if err := server.Write(filepath.Join(o.dir, "server.crt"), filepath.Join(o.dir, "server.key")); err != nil {
		return err
	}

	client, err := ca.Issue(o.client, certgen.ClientAuth, o.ttl)
	if err != nil {
		return fmt.Errorf("issue client cert: %w", err)
	}
	return client.Write(filepath.Join(o.dir, "client.crt"), filepath.Join(o.dir, "client.key"))
}
