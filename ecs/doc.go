// Package ecs provides ECS adapters for marionette's frame notifications.
//
// The primary adapter is [NewDonburiObserver], which forwards every
// completed [marionette.Rig.EndFrame] into a [Donburi] world as a typed
// event. Subscribe to [FrameEventType] in your ECS systems to receive them.
//
// Usage:
//
//	rig.SetObserver(ecs.NewDonburiObserver(world))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
