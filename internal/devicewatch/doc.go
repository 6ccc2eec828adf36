// Package devicewatch listens for udev netlink hotplug events on the
// video4linux subsystem and reports additions and removals of the
// configured camera nodes.
//
// The monitor is optional. When the netlink socket cannot be opened it logs
// a warning and the session keeps running without hotplug awareness.
package devicewatch
