// Package deploy holds the values threaded through a deployment run.
package deploy
