package physics

import "github.com/san-kum/netevo/internal/network"

// NodeDynamics lists every node dynamic in this package.
func NodeDynamics() []network.NodeDynamic {
	return []network.NodeDynamic{KuramotoMap{}, KuramotoOscillator{}, Rossler{}, Lorenz{}, VanDerPol{}, Zero{}}
}

func ArcDynamics() []network.ArcDynamic {
	return []network.ArcDynamic{AdaptiveArc{}}
}

// Register adds every dynamic in this package to sys.
func Register(sys *network.System) {
	for _, d := range NodeDynamics() {
		sys.RegisterNodeDynamic(d)
	}
	for _, d := range ArcDynamics() {
		sys.RegisterArcDynamic(d)
	}
}
