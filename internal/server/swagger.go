package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs

// @title wcag131 API
// @version 0.1
// @description Audit HTML documents and live pages against WCAG 1.3.1 (Info and Relationships).
// @contact.name wcag131 Maintainers
// @contact.url https://github.com/raysh454/wcag131
// @BasePath /
