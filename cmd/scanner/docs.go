package main

//go:generate swag init -g cmd/scanner/main.go -o docs

// @title           ArbScan API
// @version         0.1.0
// @description     Multi-strategy arbitrage scanner: triangle cycles, statistical pairs, funding carry and delta-neutral basis.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
