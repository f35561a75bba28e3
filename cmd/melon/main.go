// Command melon resolves artist and track metadata across Genius, Spotify
// and Tunebat, and serves it over HTTP.
package main

func main() {
	Execute()
}
