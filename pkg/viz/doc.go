// Package viz renders river networks as Graphviz node-link diagrams for
// inspection. Segments are nodes labeled with their external ids; edges
// point from parent to child, so water flows along the arrows in upstream
// builds. Headwaters are highlighted since they seed the traversal.
package viz
