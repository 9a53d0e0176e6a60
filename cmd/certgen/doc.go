// Command certgen drives the labcert pipeline from the shell: it computes
// sample concentrations, classifies fibre observations, stores lab
// certificates, and assembles the finished report PDF from a TOML job file.
//
// Configuration is read from ~/.config/labcert/config.toml (or labcert.toml
// in the working directory) after a .env file, if present, has been loaded
// into the environment.
package main
