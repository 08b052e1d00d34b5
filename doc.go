/*
 * doc.go, part of gopmhc.
 *
 * Copyright 2024 The gopmhc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

/*Package pmhc is the main package of the gopmhc library. It provides the structure,
template and target types, and reading/writing of PDB files, including the IMGT
REMARK 410 annotations.



	**gopmhc Capabilities**


    Reads (also gzip or zstd compressed) and writes PDB files, keeping the header.

    Parses IMGT chain, allele and fused-peptide annotations, and the resolution.

    Computes inter-chain atomic contacts with a k-d tree (package contacts).

    Finds the peptide and receptor chains of a peptide/MHC complex (package chains).

    Cleans and validates IMGT structures into a library of templates with
	chains H, L (class II only) and P, concurrently (package clean).

    Normalizes allele names to what is available in the library (package allele).

    Selects the best template(s) for a target peptide/MHC, with an alignment
	that keeps the anchor positions of the peptides in the same column (package selector).

    Keeps, saves and loads the template library (package library), and plots
	some of its properties (package libplot).

    Prepares the alignment and restraints for a modeling engine (package modeling).

Coordinates are gonum r3.Vec values. Chain identifiers are strings, but PDB files
only keep their first character.*/
package pmhc
