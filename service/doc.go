// Package service is the query surface a front end calls: list titles,
// recommend similar movies for a title, and show a movie's tags.
package service
