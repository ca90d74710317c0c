package utils

import (
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
)

// PrintRoutes dumps every route mounted on a chi.Router to the console.
// Useful when debugging which host routes shadow plugin dispatch.
func PrintRoutes(r chi.Router) {
	fmt.Println("\n=== Registered Routes ===")
	walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		fmt.Printf("%-6s %s\n", method, strings.Replace(route, "/*/", "/", -1))
		return nil
	}
	if err := chi.Walk(r, walkFunc); err != nil {
		fmt.Printf("Error walking routes: %v\n", err)
	}
	fmt.Println("========================")
}
