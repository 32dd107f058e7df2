// Command demoserver starts a small shop site whose pages can be switched
// between an accessible and a broken version, for trying out audit history.
// Usage: go run ./cmd/demoserver [port] [accessible|broken]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/wcag131/internal/demoserver"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}
	if len(os.Args) > 2 {
		switch os.Args[2] {
		case "accessible":
			cfg.InitialVersion = demoserver.VersionAccessible
		case "broken":
			cfg.InitialVersion = demoserver.VersionBroken
		default:
			log.Fatalf("Invalid version: %s (want accessible or broken)", os.Args[2])
		}
	}

	fmt.Println("===========================================")
	fmt.Println("   WCAG 1.3.1 Demo Server")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Every page comes in two versions that can be")
	fmt.Println("switched on-the-fly from the control panel.")
	fmt.Println()
	fmt.Println("Pages:")
	for _, p := range demoserver.GetAllPages() {
		fmt.Printf("  %-10s %s\n", p.Path, p.Description)
	}
	fmt.Println()

	server := demoserver.NewDemoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
