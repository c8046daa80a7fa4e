// Package main generates a development CA and a server certificate signed
// by it. Point the server at server.crt/server.key (TLS_CERT, TLS_KEY) and
// the console at ca.crt (-ca).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/PlantCare/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server names and IPs")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ",")); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("✅ Certificates generated into %s\n", *dir)
}

// run writes ca.crt, ca.key, server.crt and server.key under dir. An
// existing CA in dir is reused so clients keep trusting it.
func run(dir string, hosts []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	caCert, caKey := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")
	ca, err := certgen.LoadAuthority(caCert, caKey)
	if err != nil {
		ca, err = certgen.NewAuthority("PlantCare Dev CA", 10*365*24*time.Hour)
		if err != nil {
			return err
		}
		if err := ca.WriteFiles(dir); err != nil {
			return err
		}
	}

	var clean []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, h)
		}
	}
	certPEM, keyPEM, err := ca.IssueServer(clean, 365*24*time.Hour)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "server.crt"), certPEM, 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "server.key"), keyPEM, 0o600)
}
