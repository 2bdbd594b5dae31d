// Command booructl is the offline companion to the lightbooru server: it
// scans library roots directly, answers searches, applies overlay edits and
// manages tag alias groups without needing a running instance.
package main
