/*
Package dayloop is the core of a small day-cycle game prototype.
Subsystems talk to each other through the typed event bus in patterns/eventbus, so a producer like the day timer never needs a reference to the things that react to a day ending.

The packages here are deliberately small and map to one concern each: the bus itself, the day timer that feeds it, the game coordinator that owns handler lifecycles, and the configuration and logging glue used by cmd/dayloop.
*/
package dayloop
