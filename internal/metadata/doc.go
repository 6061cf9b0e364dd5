// Package metadata looks up recordings, works, and credit relations from a
// metadata source. Two backends implement the Source interface: an HTTP
// client for the MusicBrainz web service and a direct client for a local
// database mirror.
package metadata
